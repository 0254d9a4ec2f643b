package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Client-side validation
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Authentication
	ErrCodeAuthRejected       ErrorCode = "AUTH_REJECTED"
	ErrCodeNoPendingChallenge ErrorCode = "NO_PENDING_CHALLENGE"
	ErrCodeSessionMissing     ErrorCode = "SESSION_MISSING"
	ErrCodeOtpDispatchFailed  ErrorCode = "OTP_DISPATCH_FAILED"

	// Admin update gate
	ErrCodeVerificationRejected ErrorCode = "VERIFICATION_REJECTED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Transport
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	ErrCodeServer  ErrorCode = "SERVER_ERROR"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
)

// AppError is a structured error surfaced to the user as a short
// title + description notification.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

// AuthRejected carries the server-provided rejection message verbatim.
func AuthRejected(detail string) *AppError {
	if detail == "" {
		detail = "Invalid credentials"
	}
	return New(ErrCodeAuthRejected, detail)
}

func NoPendingChallenge() *AppError {
	return New(ErrCodeNoPendingChallenge, "No sign-in in progress; restart sign-in")
}

func SessionMissing() *AppError {
	return New(ErrCodeSessionMissing, "Not signed in")
}

func OtpDispatchFailed(cause error) *AppError {
	return Wrap(ErrCodeOtpDispatchFailed, "Failed to send one-time code", cause)
}

// VerificationRejected carries the verdict's reason plus any
// improvement suggestions from the plausibility check.
func VerificationRejected(reason string, suggestions []string) *AppError {
	err := New(ErrCodeVerificationRejected, reason)
	if len(suggestions) > 0 {
		err.Details = suggestions
	}
	return err
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Network(cause error) *AppError {
	return Wrap(ErrCodeNetwork, "Network error", cause)
}

func Server(status int, detail string) *AppError {
	if detail == "" {
		detail = fmt.Sprintf("Server returned status %d", status)
	}
	return New(ErrCodeServer, detail).WithDetails(map[string]int{"status": status})
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Storage(cause error) *AppError {
	return Wrap(ErrCodeStorage, "Local storage error", cause)
}

// ServerStatus returns the HTTP status attached to a SERVER_ERROR, or 0.
func ServerStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeServer {
		return 0
	}
	if details, ok := appErr.Details.(map[string]int); ok {
		return details["status"]
	}
	return 0
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

package api

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
)

// Login posts credentials to the citizen or admin login surface. A 401
// or 404 is an auth rejection carrying the server message; any other
// failure is passed through unchanged.
func (c *Client) Login(ctx context.Context, email, password string, adminFlow bool) (*model.LoginResult, error) {
	path := "/auth/login"
	if adminFlow {
		path = "/auth/admin/login"
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var result model.LoginResult
	if err := c.postForm(ctx, c.url(path), form, &result); err != nil {
		return nil, asAuthRejection(err)
	}
	return &result, nil
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

// SendOTP triggers a single out-of-band code dispatch to the registered
// email. Dispatch is idempotent server-side; callers re-invoke it for an
// explicit resend.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.postJSON(ctx, c.otpURL("/send-otp"), sendOTPRequest{Email: email}, nil)
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP checks the code against the challenge held server-side.
// Wrong or expired codes come back as an auth rejection.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	err := c.postJSON(ctx, c.otpURL("/verify-otp"), verifyOTPRequest{Email: email, OTP: otp}, nil)
	if err != nil {
		return asAuthRejection(err)
	}
	return nil
}

type checkUserResponse struct {
	Exists bool `json:"exists"`
}

// CheckUser reports whether an account with the given email or phone
// already exists. Used by the registration workflow as a pre-check.
func (c *Client) CheckUser(ctx context.Context, email, phone string) (bool, error) {
	form := url.Values{}
	if email != "" {
		form.Set("email", email)
	}
	if phone != "" {
		form.Set("phone_number", phone)
	}

	var resp checkUserResponse
	if err := c.postForm(ctx, c.url("/checkuser"), form, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// RegisterParams carries the normalized personal fields posted to the
// registration endpoint.
type RegisterParams struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	State       string `json:"state,omitempty"`
	District    string `json:"district,omitempty"`
	Taluk       string `json:"taluk,omitempty"`
	IDType      string `json:"id_type"`
	IDNumber    string `json:"id_number"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// Register creates the account. No token is returned; the caller must
// sign in afterwards.
func (c *Client) Register(ctx context.Context, params RegisterParams) (int64, error) {
	var resp registerResponse
	if err := c.postJSON(ctx, c.url("/auth/register"), params, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// asAuthRejection converts 400/401/404 server errors into AUTH_REJECTED
// so the state machine can surface the server message verbatim.
func asAuthRejection(err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeServer {
		return err
	}
	switch apperrors.ServerStatus(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
		return apperrors.AuthRejected(appErr.Message)
	}
	return err
}

package register

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/api"
	"github.com/grievease/petition-client-go/internal/config"
	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/util"
)

// Stage identifies how far the account application has progressed.
// Stages advance strictly forward; a failed remote call leaves the
// stage where it was.
type Stage string

const (
	StageIdentity          Stage = "identity"
	StageCredentials       Stage = "credentials"
	StageEmailVerification Stage = "email_verification"
	StageIdentityDocument  Stage = "identity_document"
	StageSubmitted         Stage = "submitted"
)

// API is the slice of the REST client the workflow drives.
type API interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	CheckUser(ctx context.Context, email, phone string) (bool, error)
	Register(ctx context.Context, params api.RegisterParams) (int64, error)
}

// Identity is the stage-one personal information.
type Identity struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	State       string
	District    string
	Taluk       string
}

// Credentials is the stage-two password pair.
type Credentials struct {
	Password string
	Confirm  string
}

// Document is the stage-four identity proof.
type Document struct {
	IDType   string
	IDNumber string
	Filename string
	Consent  bool
}

// Workflow walks a new account application through its stages. It never
// produces a Session; after StageSubmitted the applicant signs in
// through the normal two-step flow.
type Workflow struct {
	api API

	mu       sync.Mutex
	stage    Stage
	identity Identity
	password string
	userID   int64
}

func NewWorkflow(a API) *Workflow {
	return &Workflow{api: a, stage: StageIdentity}
}

// Stage returns the current stage.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// UserID returns the account id issued on submission, zero before then.
func (w *Workflow) UserID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.userID
}

// SubmitIdentity validates the personal fields, checks the email and
// phone are not already registered, and advances to the credentials
// stage.
func (w *Workflow) SubmitIdentity(ctx context.Context, identity Identity) error {
	if err := w.requireStage(StageIdentity); err != nil {
		return err
	}
	if identity.FirstName == "" {
		return apperrors.MissingRequired("first name")
	}
	if !util.IsValidEmail(identity.Email) {
		return apperrors.InvalidInput("email", "must contain @")
	}
	if !util.IsValidPhone(identity.PhoneNumber) {
		return apperrors.InvalidInput("phone", "must be exactly 10 digits")
	}

	exists, err := w.api.CheckUser(ctx, identity.Email, identity.PhoneNumber)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.InvalidInput("email", "an account with this email or phone already exists")
	}

	w.mu.Lock()
	w.identity = identity
	w.stage = StageCredentials
	w.mu.Unlock()
	return nil
}

// SubmitCredentials validates the password pair, dispatches the email
// verification code, and advances. A dispatch failure holds the stage.
func (w *Workflow) SubmitCredentials(ctx context.Context, creds Credentials) error {
	if err := w.requireStage(StageCredentials); err != nil {
		return err
	}
	if len(creds.Password) < config.MinPasswordLength {
		return apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	if creds.Password != creds.Confirm {
		return apperrors.InvalidInput("password", "confirmation does not match")
	}

	w.mu.Lock()
	email := w.identity.Email
	w.mu.Unlock()

	if err := w.api.SendOTP(ctx, email); err != nil {
		return apperrors.OtpDispatchFailed(err)
	}

	w.mu.Lock()
	w.password = creds.Password
	w.stage = StageEmailVerification
	w.mu.Unlock()

	log.Info().Str("email", util.MaskEmail(email)).Msg("verification code dispatched")
	return nil
}

// ResendCode re-dispatches the verification code.
func (w *Workflow) ResendCode(ctx context.Context) error {
	if err := w.requireStage(StageEmailVerification); err != nil {
		return err
	}
	w.mu.Lock()
	email := w.identity.Email
	w.mu.Unlock()

	if err := w.api.SendOTP(ctx, email); err != nil {
		return apperrors.OtpDispatchFailed(err)
	}
	return nil
}

// SubmitCode verifies the emailed code and advances to the document
// stage. A wrong code keeps the stage so the applicant can retry.
func (w *Workflow) SubmitCode(ctx context.Context, code string) error {
	if err := w.requireStage(StageEmailVerification); err != nil {
		return err
	}
	if !util.IsValidOTP(code) {
		return apperrors.InvalidInput("otp", "must be exactly 6 digits")
	}

	w.mu.Lock()
	email := w.identity.Email
	w.mu.Unlock()

	if err := w.api.VerifyOTP(ctx, email, code); err != nil {
		return err
	}

	w.mu.Lock()
	w.stage = StageIdentityDocument
	w.mu.Unlock()
	return nil
}

// SubmitDocument validates the identity proof and posts the complete
// application. Success returns the issued account id.
func (w *Workflow) SubmitDocument(ctx context.Context, doc Document) (int64, error) {
	if err := w.requireStage(StageIdentityDocument); err != nil {
		return 0, err
	}
	if doc.IDNumber == "" {
		return 0, apperrors.MissingRequired("id number")
	}
	if doc.Filename == "" {
		return 0, apperrors.MissingRequired("identity document")
	}
	if !doc.Consent {
		return 0, apperrors.MissingRequired("consent")
	}

	w.mu.Lock()
	params := api.RegisterParams{
		FirstName:   w.identity.FirstName,
		LastName:    w.identity.LastName,
		Email:       w.identity.Email,
		PhoneNumber: w.identity.PhoneNumber,
		Password:    w.password,
		State:       w.identity.State,
		District:    w.identity.District,
		Taluk:       w.identity.Taluk,
		IDType:      doc.IDType,
		IDNumber:    doc.IDNumber,
	}
	w.mu.Unlock()

	userID, err := w.api.Register(ctx, params)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	w.userID = userID
	w.stage = StageSubmitted
	w.mu.Unlock()

	log.Info().Int64("userId", userID).Msg("registration submitted")
	return userID, nil
}

func (w *Workflow) requireStage(want Stage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != want {
		return apperrors.InvalidInput("stage", "registration is at the "+string(w.stage)+" stage")
	}
	return nil
}

package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/audit"
	"github.com/grievease/petition-client-go/internal/config"
	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
	"github.com/grievease/petition-client-go/internal/store"
	"github.com/grievease/petition-client-go/internal/util"
)

// State identifies where the sign-in handshake currently stands.
type State string

const (
	StateAnonymous       State = "anonymous"
	StatePasswordPending State = "password_pending"
	StateOtpPending      State = "otp_pending"
	StateAuthenticated   State = "authenticated"
)

// API is the slice of the REST client the state machine drives.
type API interface {
	Login(ctx context.Context, email, password string, adminFlow bool) (*model.LoginResult, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	SetToken(token string)
}

// pendingChallenge bridges password verification and OTP verification.
// It holds the provisional login payload without trusting it, is never
// persisted, and is cleared on success or on a new sign-in attempt.
type pendingChallenge struct {
	email     string
	result    *model.LoginResult
	adminFlow bool
}

// Manager owns the single client Session and drives the two-step
// sign-in handshake. All session mutation funnels through its four
// operations; everything else sees the session read-only.
type Manager struct {
	api      API
	sessions store.SessionStore
	now      func() time.Time

	mu        sync.Mutex
	state     State
	session   *model.Session
	pending   *pendingChallenge
	listeners []func(State)
}

func NewManager(api API, sessions store.SessionStore) *Manager {
	return &Manager{
		api:      api,
		sessions: sessions,
		now:      time.Now,
		state:    StateAnonymous,
	}
}

// State returns the current handshake state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or nil when anonymous.
func (m *Manager) Session() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Subscribe registers fn to run after every state transition.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) setState(s State) {
	m.state = s
	for _, fn := range m.listeners {
		fn(s)
	}
}

// SubmitCredentials validates the identifier and password locally, posts
// them to the citizen or admin login surface, and on acceptance
// dispatches the one-time code and advances to OtpPending. The
// provisional login payload is held but not trusted until the OTP step.
func (m *Manager) SubmitCredentials(ctx context.Context, identifier, password string, adminFlow bool) error {
	if password == "" {
		return apperrors.MissingRequired("password")
	}
	if err := validateIdentifier(identifier); err != nil {
		return err
	}

	m.mu.Lock()
	// Starting a new attempt abandons any half-finished challenge.
	m.pending = nil
	m.setState(StatePasswordPending)
	m.mu.Unlock()

	result, err := m.api.Login(ctx, identifier, password, adminFlow)
	if err != nil {
		m.mu.Lock()
		m.setState(StateAnonymous)
		m.mu.Unlock()
		audit.Log(audit.Event{
			Type:    audit.EventLoginFailure,
			Email:   util.MaskEmail(identifier),
			Details: map[string]interface{}{"admin_flow": adminFlow},
		})
		return err
	}

	// The OTP goes to the account's registered email, which may differ
	// from the identifier when signing in by phone.
	email := result.User.Email
	if email == "" {
		email = identifier
	}

	if err := m.api.SendOTP(ctx, email); err != nil {
		// Dispatch failure aborts the transition; the provisional
		// payload is discarded rather than left half-trusted.
		m.mu.Lock()
		m.setState(StateAnonymous)
		m.mu.Unlock()
		return apperrors.OtpDispatchFailed(err)
	}

	m.mu.Lock()
	m.pending = &pendingChallenge{email: email, result: result, adminFlow: adminFlow}
	m.setState(StateOtpPending)
	m.mu.Unlock()

	log.Info().Str("email", util.MaskEmail(email)).Bool("adminFlow", adminFlow).Msg("password accepted, otp dispatched")
	audit.Log(audit.Event{Type: audit.EventOtpDispatch, Email: util.MaskEmail(email)})
	return nil
}

// ResendOTP re-dispatches the code for the pending challenge. There is
// no automatic retry anywhere; the user triggers this explicitly.
func (m *Manager) ResendOTP(ctx context.Context) error {
	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()

	if pending == nil {
		return apperrors.NoPendingChallenge()
	}
	if err := m.api.SendOTP(ctx, pending.email); err != nil {
		return apperrors.OtpDispatchFailed(err)
	}
	return nil
}

// SubmitOTP verifies the code and, on success, promotes the pending
// challenge into a trusted, persisted Session.
func (m *Manager) SubmitOTP(ctx context.Context, code string) error {
	if !util.IsValidOTP(code) {
		return apperrors.InvalidInput("otp", "must be exactly 6 digits")
	}

	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()

	if pending == nil {
		return apperrors.NoPendingChallenge()
	}

	if err := m.api.VerifyOTP(ctx, pending.email, code); err != nil {
		audit.Log(audit.Event{Type: audit.EventOtpFailure, Email: util.MaskEmail(pending.email)})
		return err
	}

	session := sessionFromLogin(pending.result, m.now().Add(config.SessionTTL))

	m.mu.Lock()
	m.session = session
	m.pending = nil
	m.setState(StateAuthenticated)
	m.mu.Unlock()

	m.api.SetToken(session.Token)

	if err := m.sessions.Save(ctx, session); err != nil {
		// The in-memory session stays valid for this run; only the
		// restore-at-startup path is degraded.
		log.Warn().Err(err).Msg("failed to persist session")
	}

	log.Info().
		Str("email", util.MaskEmail(session.Email)).
		Str("role", string(session.Role)).
		Msg("signed in")
	audit.Log(audit.Event{
		Type:   audit.EventLoginSuccess,
		Email:  util.MaskEmail(session.Email),
		UserID: session.UserID,
		Details: map[string]interface{}{
			"role": string(session.Role),
		},
	})
	return nil
}

// RestoreSession loads the persisted session at startup. Malformed,
// expired, or missing records leave the machine Anonymous; it never
// fails to the caller.
func (m *Manager) RestoreSession(ctx context.Context) *model.Session {
	session, err := m.sessions.Load(ctx)
	if err != nil || session == nil {
		if err != nil {
			log.Debug().Err(err).Msg("session restore failed")
		}
		return nil
	}

	m.mu.Lock()
	m.session = session
	m.pending = nil
	m.setState(StateAuthenticated)
	m.mu.Unlock()

	m.api.SetToken(session.Token)

	log.Debug().Str("email", util.MaskEmail(session.Email)).Msg("session restored")
	s := *session
	return &s
}

// SignOut clears the session and persisted storage unconditionally.
// Idempotent: signing out while anonymous is a no-op.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	m.session = nil
	m.pending = nil
	m.setState(StateAnonymous)
	m.mu.Unlock()

	m.api.SetToken("")

	if err := m.sessions.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	audit.Log(audit.Event{Type: audit.EventLogout})
}

func sessionFromLogin(result *model.LoginResult, expiresAt time.Time) *model.Session {
	session := &model.Session{
		Token:     result.AccessToken,
		FirstName: result.User.FirstName,
		Email:     result.User.Email,
		ExpiresAt: expiresAt,
	}
	if result.User.IsAdmin {
		session.Role = model.RoleOfficer
		session.OfficerID = result.User.OfficerID
		session.Department = result.User.Department
		session.Designation = result.User.Designation
	} else {
		session.Role = model.RoleCitizen
		session.UserID = result.User.UserID
	}
	return session
}

func validateIdentifier(identifier string) error {
	if identifier == "" {
		return apperrors.MissingRequired("email or phone")
	}
	if strings.ContainsRune(identifier, '@') {
		if !util.IsValidEmail(identifier) {
			return apperrors.InvalidInput("email", "must contain @")
		}
		return nil
	}
	if !util.IsValidPhone(identifier) {
		return apperrors.InvalidInput("phone", "must be exactly 10 digits")
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Login(ctx context.Context, email, password string, adminFlow bool) (*model.LoginResult, error) {
	args := m.Called(ctx, email, password, adminFlow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResult), args.Error(1)
}

func (m *mockAPI) SendOTP(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockAPI) VerifyOTP(ctx context.Context, email, otp string) error {
	args := m.Called(ctx, email, otp)
	return args.Error(0)
}

func (m *mockAPI) SetToken(token string) {
	m.Called(token)
}

// memStore is an in-memory SessionStore for driving the manager without
// a database.
type memStore struct {
	session *model.Session
	loadErr error
	saveErr error
	cleared int
}

func (s *memStore) Load(ctx context.Context) (*model.Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.session, nil
}

func (s *memStore) Save(ctx context.Context, session *model.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.session = session
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.session = nil
	s.cleared++
	return nil
}

func (s *memStore) DeleteExpired(ctx context.Context) error {
	return nil
}

func citizenLogin() *model.LoginResult {
	return &model.LoginResult{
		AccessToken: "tok",
		TokenType:   "bearer",
		User: model.LoginUser{
			UserID:    7,
			FirstName: "A",
			Email:     "a@b.com",
			IsAdmin:   false,
		},
	}
}

func TestSubmitCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty password before any network call", func(t *testing.T) {
		api := &mockAPI{}
		m := NewManager(api, &memStore{})

		err := m.SubmitCredentials(ctx, "a@b.com", "", false)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
		assert.Equal(t, StateAnonymous, m.State())
		api.AssertNotCalled(t, "Login")
	})

	t.Run("rejects malformed phone identifier", func(t *testing.T) {
		api := &mockAPI{}
		m := NewManager(api, &memStore{})

		err := m.SubmitCredentials(ctx, "12345", "secret12", false)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
		api.AssertNotCalled(t, "Login")
	})

	t.Run("accepts 10-digit phone identifier", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "9952366108", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil)
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "9952366108", "secret12", false))
		assert.Equal(t, StateOtpPending, m.State())
	})

	t.Run("server rejection returns to anonymous with verbatim detail", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "wrong", false).Return(nil, apperrors.AuthRejected("Incorrect password"))
		m := NewManager(api, &memStore{})

		err := m.SubmitCredentials(ctx, "a@b.com", "wrong", false)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAuthRejected, apperrors.GetCode(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "Incorrect password", appErr.Message)
		assert.Equal(t, StateAnonymous, m.State())
		assert.Nil(t, m.Session())
	})

	t.Run("otp dispatch failure aborts the transition", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(errors.New("smtp down"))
		m := NewManager(api, &memStore{})

		err := m.SubmitCredentials(ctx, "a@b.com", "secret12", false)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeOtpDispatchFailed, apperrors.GetCode(err))
		assert.Equal(t, StateAnonymous, m.State())

		// The discarded challenge cannot be completed afterwards.
		err = m.SubmitOTP(ctx, "482913")
		assert.Equal(t, apperrors.ErrCodeNoPendingChallenge, apperrors.GetCode(err))
	})

	t.Run("password acceptance alone never authenticates", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil)
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		assert.Equal(t, StateOtpPending, m.State())
		assert.Nil(t, m.Session())
	})

	t.Run("new attempt clears a previous pending challenge", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil).Once()
		api.On("SendOTP", ctx, "a@b.com").Return(nil).Once()
		api.On("Login", ctx, "a@b.com", "other", false).Return(nil, apperrors.AuthRejected("Incorrect password")).Once()
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		require.Error(t, m.SubmitCredentials(ctx, "a@b.com", "other", false))

		err := m.SubmitOTP(ctx, "482913")
		assert.Equal(t, apperrors.ErrCodeNoPendingChallenge, apperrors.GetCode(err))
	})
}

func TestSubmitOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("without pending challenge fails and stays anonymous", func(t *testing.T) {
		api := &mockAPI{}
		m := NewManager(api, &memStore{})

		err := m.SubmitOTP(ctx, "482913")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNoPendingChallenge, apperrors.GetCode(err))
		assert.Equal(t, StateAnonymous, m.State())
	})

	t.Run("rejects codes that are not 6 digits", func(t *testing.T) {
		api := &mockAPI{}
		m := NewManager(api, &memStore{})

		for _, code := range []string{"", "12345", "1234567", "48291a"} {
			err := m.SubmitOTP(ctx, code)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err), "code %q", code)
		}
		api.AssertNotCalled(t, "VerifyOTP")
	})

	t.Run("wrong code keeps the challenge for retry", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil)
		api.On("VerifyOTP", ctx, "a@b.com", "000000").Return(apperrors.AuthRejected("Invalid OTP"))
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		err := m.SubmitOTP(ctx, "000000")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAuthRejected, apperrors.GetCode(err))
		assert.Equal(t, StateOtpPending, m.State())
	})

	t.Run("citizen end-to-end sign-in", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil)
		api.On("VerifyOTP", ctx, "a@b.com", "482913").Return(nil)
		api.On("SetToken", "tok").Return()
		st := &memStore{}
		m := NewManager(api, st)

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		assert.Equal(t, StateOtpPending, m.State())

		require.NoError(t, m.SubmitOTP(ctx, "482913"))
		assert.Equal(t, StateAuthenticated, m.State())

		session := m.Session()
		require.NotNil(t, session)
		assert.Equal(t, "tok", session.Token)
		assert.Equal(t, model.RoleCitizen, session.Role)
		assert.Equal(t, int64(7), session.UserID)
		assert.Equal(t, "a@b.com", session.Email)

		// Persisted with an expiry window.
		require.NotNil(t, st.session)
		assert.Equal(t, "tok", st.session.Token)
		assert.False(t, st.session.ExpiresAt.IsZero())

		api.AssertCalled(t, "SetToken", "tok")
	})

	t.Run("officer login maps admin attribute set", func(t *testing.T) {
		api := &mockAPI{}
		result := &model.LoginResult{
			AccessToken: "admintok",
			User: model.LoginUser{
				OfficerID: 3, FirstName: "O", Email: "o@gov.in",
				IsAdmin: true, Department: "Roads", Designation: "Engineer",
			},
		}
		api.On("Login", ctx, "o@gov.in", "pw123456", true).Return(result, nil)
		api.On("SendOTP", ctx, "o@gov.in").Return(nil)
		api.On("VerifyOTP", ctx, "o@gov.in", "482913").Return(nil)
		api.On("SetToken", "admintok").Return()
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "o@gov.in", "pw123456", true))
		require.NoError(t, m.SubmitOTP(ctx, "482913"))

		session := m.Session()
		require.NotNil(t, session)
		assert.Equal(t, model.RoleOfficer, session.Role)
		assert.True(t, session.IsAdmin())
		assert.Equal(t, int64(3), session.OfficerID)
		assert.Equal(t, "Roads", session.Department)
		assert.Equal(t, "Engineer", session.Designation)
		assert.Zero(t, session.UserID)
	})

	t.Run("persist failure still authenticates for this run", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil)
		api.On("VerifyOTP", ctx, "a@b.com", "482913").Return(nil)
		api.On("SetToken", "tok").Return()
		m := NewManager(api, &memStore{saveErr: errors.New("disk full")})

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		require.NoError(t, m.SubmitOTP(ctx, "482913"))
		assert.Equal(t, StateAuthenticated, m.State())
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("without pending challenge fails", func(t *testing.T) {
		m := NewManager(&mockAPI{}, &memStore{})
		err := m.ResendOTP(ctx)
		assert.Equal(t, apperrors.ErrCodeNoPendingChallenge, apperrors.GetCode(err))
	})

	t.Run("re-dispatches to the challenge email", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
		api.On("SendOTP", ctx, "a@b.com").Return(nil).Twice()
		m := NewManager(api, &memStore{})

		require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
		require.NoError(t, m.ResendOTP(ctx))
		api.AssertNumberOfCalls(t, "SendOTP", 2)
	})
}

func TestRestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a stored session directly to authenticated", func(t *testing.T) {
		api := &mockAPI{}
		api.On("SetToken", "tok").Return()
		st := &memStore{session: &model.Session{Token: "tok", Email: "a@b.com", Role: model.RoleCitizen, UserID: 7}}
		m := NewManager(api, st)

		session := m.RestoreSession(ctx)
		require.NotNil(t, session)
		assert.Equal(t, StateAuthenticated, m.State())
		api.AssertCalled(t, "SetToken", "tok")
	})

	t.Run("no stored session stays anonymous", func(t *testing.T) {
		m := NewManager(&mockAPI{}, &memStore{})
		assert.Nil(t, m.RestoreSession(ctx))
		assert.Equal(t, StateAnonymous, m.State())
	})

	t.Run("storage failure never raises", func(t *testing.T) {
		m := NewManager(&mockAPI{}, &memStore{loadErr: errors.New("corrupt database")})
		assert.NotPanics(t, func() {
			assert.Nil(t, m.RestoreSession(ctx))
		})
		assert.Equal(t, StateAnonymous, m.State())
	})
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("clears session and storage", func(t *testing.T) {
		api := &mockAPI{}
		api.On("SetToken", "tok").Return()
		api.On("SetToken", "").Return()
		st := &memStore{session: &model.Session{Token: "tok", Email: "a@b.com", Role: model.RoleCitizen}}
		m := NewManager(api, st)
		m.RestoreSession(ctx)

		m.SignOut(ctx)
		assert.Equal(t, StateAnonymous, m.State())
		assert.Nil(t, m.Session())
		assert.Nil(t, st.session)
		api.AssertCalled(t, "SetToken", "")
	})

	t.Run("is idempotent", func(t *testing.T) {
		api := &mockAPI{}
		api.On("SetToken", "").Return()
		st := &memStore{}
		m := NewManager(api, st)

		m.SignOut(ctx)
		m.SignOut(ctx)
		assert.Equal(t, StateAnonymous, m.State())
		assert.Equal(t, 2, st.cleared)
		assert.Nil(t, st.session)
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	api := &mockAPI{}
	api.On("Login", ctx, "a@b.com", "secret12", false).Return(citizenLogin(), nil)
	api.On("SendOTP", ctx, "a@b.com").Return(nil)
	m := NewManager(api, &memStore{})

	var seen []State
	m.Subscribe(func(s State) { seen = append(seen, s) })

	require.NoError(t, m.SubmitCredentials(ctx, "a@b.com", "secret12", false))
	assert.Equal(t, []State{StatePasswordPending, StateOtpPending}, seen)
}

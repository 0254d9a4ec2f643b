package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
)

func TestLogin(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		if req.PostFormValue("password") != "secret12" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"token_type":   "bearer",
			"user": map[string]any{
				"user_id":   7,
				"firstName": "A",
				"email":     req.PostFormValue("email"),
			},
		})
	})
	r.Post("/auth/admin/login", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "admintok",
			"token_type":   "bearer",
			"user": map[string]any{
				"officer_id": 3,
				"firstName":  "O",
				"email":      req.PostFormValue("email"),
				"isAdmin":    true,
				"department": "Roads",
			},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)

	t.Run("citizen login succeeds", func(t *testing.T) {
		result, err := client.Login(context.Background(), "a@b.com", "secret12", false)
		require.NoError(t, err)
		assert.Equal(t, "tok", result.AccessToken)
		assert.Equal(t, int64(7), result.User.UserID)
		assert.Equal(t, "A", result.User.FirstName)
		assert.False(t, result.User.IsAdmin)
	})

	t.Run("admin flow hits admin surface", func(t *testing.T) {
		result, err := client.Login(context.Background(), "o@gov.in", "pw", true)
		require.NoError(t, err)
		assert.Equal(t, "admintok", result.AccessToken)
		assert.True(t, result.User.IsAdmin)
		assert.Equal(t, "Roads", result.User.Department)
	})

	t.Run("rejection surfaces server detail verbatim", func(t *testing.T) {
		_, err := client.Login(context.Background(), "a@b.com", "wrong", false)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAuthRejected, apperrors.GetCode(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})
}

func TestSendOTP(t *testing.T) {
	t.Run("posts email as json", func(t *testing.T) {
		var got sendOTPRequest
		r := chi.NewRouter()
		r.Post("/send-otp", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent"})
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := NewClient(srv.URL)
		require.NoError(t, client.SendOTP(context.Background(), "a@b.com"))
		assert.Equal(t, "a@b.com", got.Email)
	})

	t.Run("uses dedicated OTP base URL when configured", func(t *testing.T) {
		hit := false
		r := chi.NewRouter()
		r.Post("/send-otp", func(w http.ResponseWriter, req *http.Request) {
			hit = true
			json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent"})
		})
		otpSrv := httptest.NewServer(r)
		defer otpSrv.Close()

		client := NewClient("http://127.0.0.1:1", WithOTPBaseURL(otpSrv.URL))
		require.NoError(t, client.SendOTP(context.Background(), "a@b.com"))
		assert.True(t, hit)
	})
}

func TestVerifyOTP(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/verify-otp", func(w http.ResponseWriter, req *http.Request) {
		var got verifyOTPRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		if got.OTP != "482913" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"detail": map[string]any{"message": "Invalid OTP", "acknowledgment": false},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"message": "OTP verified", "acknowledgment": true})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)

	t.Run("correct code verifies", func(t *testing.T) {
		assert.NoError(t, client.VerifyOTP(context.Background(), "a@b.com", "482913"))
	})

	t.Run("wrong code rejected with nested detail message", func(t *testing.T) {
		err := client.VerifyOTP(context.Background(), "a@b.com", "000000")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAuthRejected, apperrors.GetCode(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "Invalid OTP", appErr.Message)
	})
}

func TestCheckUser(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/checkuser", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		exists := req.PostFormValue("email") == "taken@b.com"
		json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)

	exists, err := client.CheckUser(context.Background(), "taken@b.com", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.CheckUser(context.Background(), "free@b.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var params RegisterParams
		require.NoError(t, json.NewDecoder(req.Body).Decode(&params))
		if params.Email == "taken@b.com" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "User with this email or phone already exists"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"message": "User registered successfully", "user_id": 42})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL)

	t.Run("returns new user id and no token", func(t *testing.T) {
		id, err := client.Register(context.Background(), RegisterParams{
			FirstName: "A", Email: "a@b.com", PhoneNumber: "9952366108",
			Password: "Ab1!Ab1!", IDType: "aadhar", IDNumber: "1234",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Empty(t, client.Token())
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		_, err := client.Register(context.Background(), RegisterParams{Email: "taken@b.com"})
		require.Error(t, err)
	})
}

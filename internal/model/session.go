package model

import "time"

// Session is the client-held proof of authentication. Exactly one active
// Session exists per runtime, or none.
type Session struct {
	Token       string    `json:"token" db:"token"`
	FirstName   string    `json:"firstName" db:"first_name"`
	Email       string    `json:"email" db:"email"`
	Role        Role      `json:"role" db:"role"`
	UserID      int64     `json:"userId,omitempty" db:"user_id"`
	OfficerID   int64     `json:"officerId,omitempty" db:"officer_id"`
	Department  string    `json:"department,omitempty" db:"department"`
	Designation string    `json:"designation,omitempty" db:"designation"`
	ExpiresAt   time.Time `json:"expiresAt" db:"expires_at"`
}

func (s *Session) IsAdmin() bool {
	return s.Role == RoleOfficer
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// LoginUser is the user object embedded in a login response. It is held
// as part of the pending challenge until OTP verification promotes it.
type LoginUser struct {
	UserID      int64  `json:"user_id,omitempty"`
	OfficerID   int64  `json:"officer_id,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// LoginResult is the provisional response produced by password
// verification. It carries the eventual token but is not trusted until
// the OTP step completes.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        LoginUser `json:"user"`
}

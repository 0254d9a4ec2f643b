package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/model"
)

// SessionStore persists the single client session across runs.
type SessionStore interface {
	// Load returns the persisted session, or nil when none is stored.
	// Expired or unreadable records are discarded, never surfaced.
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Clear(ctx context.Context) error
	// DeleteExpired removes a stored session past its expiry without
	// touching a live one.
	DeleteExpired(ctx context.Context) error
}

type sessionStore struct {
	db  *DB
	now func() time.Time
}

func NewSessionStore(db *DB) SessionStore {
	return &sessionStore{db: db, now: time.Now}
}

func (s *sessionStore) Load(ctx context.Context) (*model.Session, error) {
	var session model.Session
	err := s.db.GetContext(ctx, &session, `
		SELECT token, first_name, email, role, user_id, officer_id, department, designation, expires_at
		FROM session WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		// A record we cannot read is treated the same as no record.
		log.Debug().Err(err).Msg("discarding unreadable session record")
		_ = s.clear(ctx)
		return nil, nil
	}

	if session.Token == "" || (session.Role != model.RoleCitizen && session.Role != model.RoleOfficer) {
		log.Debug().Msg("discarding malformed session record")
		_ = s.clear(ctx)
		return nil, nil
	}

	if session.Expired(s.now()) {
		log.Debug().Time("expiresAt", session.ExpiresAt).Msg("discarding expired session record")
		_ = s.clear(ctx)
		return nil, nil
	}

	return &session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, first_name, email, role, user_id, officer_id, department, designation, expires_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			first_name = excluded.first_name,
			email = excluded.email,
			role = excluded.role,
			user_id = excluded.user_id,
			officer_id = excluded.officer_id,
			department = excluded.department,
			designation = excluded.designation,
			expires_at = excluded.expires_at
	`, session.Token, session.FirstName, session.Email, string(session.Role),
		session.UserID, session.OfficerID, session.Department, session.Designation,
		session.ExpiresAt)
	return err
}

func (s *sessionStore) Clear(ctx context.Context) error {
	return s.clear(ctx)
}

func (s *sessionStore) DeleteExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at < ?`, s.now())
	return err
}

func (s *sessionStore) clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}

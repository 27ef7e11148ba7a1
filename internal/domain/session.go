package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session token has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// Session is a server-side login session. Token is the opaque value stored
// in the browser cookie; Email is a snapshot of the user's email taken at
// login and may be empty.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal is the identity resolved from a valid session, carried in the
// request context by the session middleware.
type Principal struct {
	UserID string
	Email  string
}

// SessionStore defines the interface for session persistence. Implementations
// exist for Postgres and Redis; Redis expires sessions itself, so its
// DeleteExpired is a no-op.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuthService defines login and logout against the session store.
type AuthService interface {
	// Login verifies credentials and creates a session. Unknown email, wrong
	// password, and accounts without a password all return
	// ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, *User, error)
	Logout(ctx context.Context, token string) error
}

// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// SessionTTL is the fixed lifetime of a session. Sessions are not renewed on
// activity.
const SessionTTL = 24 * time.Hour

// User represents a registered user in the system.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active user session.
type Session struct {
	Token     string
	UserID    string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UserRepository defines the port for user persistence operations.
//
// Getters return (nil, nil) when no user matches. Create returns
// ErrDuplicateUser when the username or email is already taken.
type UserRepository interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"feedback/internal/domain"
	"feedback/internal/metrics"
)

// DefaultBcryptCost is the work factor used for password hashes.
const DefaultBcryptCost = 10

var (
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrMissingFields indicates that a required signup or login field was empty.
	ErrMissingFields = errors.New("missing required fields")
)

// AuthService handles signup, login and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	cost     int
	ttl      time.Duration
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cost:     DefaultBcryptCost,
		ttl:      domain.SessionTTL,
		now:      time.Now,
	}
}

// WithBcryptCost overrides the bcrypt work factor. Out-of-range values are ignored.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
	return s
}

// WithSessionTTL overrides the fixed session lifetime. Non-positive values are ignored.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// SessionTTL reports the lifetime given to new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.ttl
}

// Signup registers a new user and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*domain.Session, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		metrics.RecordSignup("error")
		return nil, err
	}
	if existing != nil {
		metrics.RecordSignup("duplicate")
		return nil, domain.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.cost)
	if err != nil {
		metrics.RecordSignup("error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			metrics.RecordSignup("duplicate")
			return nil, domain.ErrDuplicateUser
		}
		metrics.RecordSignup("error")
		return nil, err
	}

	metrics.RecordSignup("success")
	return s.openSession(ctx, user)
}

// Login authenticates a user by email and password and opens a session.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, err
	}
	if user == nil {
		// Keep the unknown-email path as slow as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), passwordBytes(password))
		metrics.RecordLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)); err != nil {
		metrics.RecordLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	metrics.RecordLogin("success")
	return s.openSession(ctx, user)
}

// LoginWithIdentity opens a session for a user already authenticated by an
// external identity provider, provisioning the user on first sight.
func (s *AuthService) LoginWithIdentity(ctx context.Context, email, preferredUsername string) (*domain.Session, error) {
	if email == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.provision(ctx, email, preferredUsername)
		if err != nil {
			return nil, err
		}
	}

	metrics.RecordLogin("sso")
	return s.openSession(ctx, user)
}

// bcrypt only reads the first 72 bytes of a password and rejects longer input.
const maxPasswordBytes = 72

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func (s *AuthService) provision(ctx context.Context, email, preferredUsername string) (*domain.User, error) {
	username := preferredUsername
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	candidates := []string{username, username + "-" + uuid.NewString()[:8]}
	for _, name := range candidates {
		taken, err := s.users.GetByUsername(ctx, name)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			continue
		}
		// Empty hash: SSO users cannot log in with a password.
		u := &domain.User{Username: name, Email: email, CreatedAt: s.now().UTC()}
		err = s.users.Create(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		// Lost a race on the email, or the username is taken.
		if existing, gerr := s.users.GetByEmail(ctx, email); gerr == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, domain.ErrDuplicateUser
}

// Logout invalidates a session. Deleting an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ResolveSession returns the live session for token.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// SweepExpired removes every session whose expiry has passed.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordSessionsSwept(n)
	return n, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

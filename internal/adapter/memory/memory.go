// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedback/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	feedback []domain.Feedback
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.FeedbackRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Close is a no-op; it lets DB stand in for the persistent stores.
func (db *DB) Close() error { return nil }

// --- UserRepository ---

// FindByUsernameOrEmail returns the first user matching either field.
func (db *DB) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create stores a new user and assigns its ID.
func (db *DB) Create(ctx context.Context, u *domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrDuplicateUser
		}
	}

	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	db.users = append(db.users, &cp)
	return nil
}

// --- FeedbackRepository ---

// CreateFeedback validates and stores a feedback record.
func (db *DB) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	f.ID = uuid.NewString()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	db.feedback = append(db.feedback, *f)
	return nil
}

// ListFeedbackNewestFirst returns all feedback ordered by creation time
// descending. Records with equal timestamps come back latest-inserted first.
func (db *DB) ListFeedbackNewestFirst(ctx context.Context) ([]domain.Feedback, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Feedback, 0, len(db.feedback))
	for i := len(db.feedback) - 1; i >= 0; i-- {
		result = append(result, db.feedback[i])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cp := *s
	r.db.sessions[s.Token] = &cp
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all sessions expired at now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for k, v := range r.db.sessions {
		if v.Expired(now) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}

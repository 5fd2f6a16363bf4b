package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"feedback/internal/domain"
)

type sessionRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionRepo stores sessions under the session: prefix.
type SessionRepo struct {
	db  *DB
	now func() time.Time
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

// Create stores a session. The entry carries a TTL matching its expiry,
// so Badger drops it even if the sweeper never runs.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	val, err := json.Marshal(sessionRecord{
		Token:     s.Token,
		UserID:    s.UserID,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return err
	}
	entry := badger.NewEntry([]byte(prefixSession+s.Token), val)
	if ttl := s.ExpiresAt.Sub(r.now()); ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return r.db.update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var rec sessionRecord
	var found bool
	err := r.db.bdb.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, []byte(prefixSession+token), &rec)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &domain.Session{
		Token:     rec.Token,
		UserID:    rec.UserID,
		Username:  rec.Username,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	return r.db.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixSession + token))
	})
}

// DeleteExpired deletes every session expired at now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.update(func(txn *badger.Txn) error {
		n = 0
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSession)
		it := txn.NewIterator(opts)

		var expired [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			var rec sessionRecord
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				it.Close()
				return err
			}
			if (&domain.Session{ExpiresAt: rec.ExpiresAt}).Expired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, k := range expired {
			if err := txn.Delete(k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

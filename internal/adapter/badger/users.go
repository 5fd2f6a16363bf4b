package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"feedback/internal/domain"
)

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (d *DB) userByIndex(indexKey string) (*domain.User, error) {
	var u *domain.User
	err := d.bdb.View(func(txn *badger.Txn) error {
		var err error
		u, err = lookupUser(txn, indexKey)
		return err
	})
	return u, err
}

func lookupUser(txn *badger.Txn, indexKey string) (*domain.User, error) {
	item, err := txn.Get([]byte(indexKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	var rec userRecord
	found, err := getJSON(txn, []byte(prefixUser+string(id)), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// FindByUsernameOrEmail returns the first user matching either field,
// checking email first.
func (d *DB) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var u *domain.User
	err := d.bdb.View(func(txn *badger.Txn) error {
		var err error
		if u, err = lookupUser(txn, prefixUserEmail+email); err != nil || u != nil {
			return err
		}
		u, err = lookupUser(txn, prefixUserName+username)
		return err
	})
	return u, err
}

// GetByEmail retrieves a user by email.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.userByIndex(prefixUserEmail + email)
}

// GetByUsername retrieves a user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.userByIndex(prefixUserName + username)
}

// Create stores a new user. Both index keys are checked inside the same
// transaction, so concurrent signups for one name cannot both commit.
func (d *DB) Create(ctx context.Context, u *domain.User) error {
	id := uuid.NewString()
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	emailKey := []byte(prefixUserEmail + u.Email)
	nameKey := []byte(prefixUserName + u.Username)

	err := d.update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{emailKey, nameKey} {
			taken, err := exists(txn, k)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrDuplicateUser
			}
		}

		val, err := json.Marshal(userRecord{
			ID:           id,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    createdAt,
		})
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixUser+id), val); err != nil {
			return err
		}
		if err := txn.Set(emailKey, []byte(id)); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(id))
	})
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = createdAt
	return nil
}

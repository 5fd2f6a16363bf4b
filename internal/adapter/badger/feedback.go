package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"feedback/internal/domain"
)

// CreateFeedback validates and stores a feedback record.
func (d *DB) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	seq, err := d.seq.Next()
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	rec := *f
	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	err = d.update(func(txn *badger.Txn) error {
		return txn.Set(feedbackKey(rec.CreatedAt, seq), val)
	})
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	f.ID = rec.ID
	f.CreatedAt = rec.CreatedAt
	return nil
}

// ListFeedbackNewestFirst walks the feedback keyspace in reverse.
func (d *DB) ListFeedbackNewestFirst(ctx context.Context) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0)
	err := d.bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixFeedback)
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key.
		seek := append([]byte(prefixFeedback), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			var f domain.Feedback
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &f)
			}); err != nil {
				return err
			}
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

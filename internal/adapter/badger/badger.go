// Package badger implements the domain repositories on an embedded Badger
// key-value store. Values are JSON documents; secondary keys index users by
// email and username.
package badger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"feedback/internal/domain"
	"feedback/internal/logging"
)

const (
	prefixUser      = "user:"
	prefixUserEmail = "user_email:"
	prefixUserName  = "user_name:"
	prefixFeedback  = "feedback:"
	prefixSession   = "session:"

	feedbackSeqKey = "seq:feedback"

	// maxTxnRetries bounds retries on optimistic transaction conflicts.
	maxTxnRetries = 3
)

// DB wraps an open Badger database.
type DB struct {
	bdb *badger.DB
	seq *badger.Sequence
}

var _ domain.UserRepository = (*DB)(nil)
var _ domain.FeedbackRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Open opens (or creates) the store at path. An empty path opens an
// in-memory store.
func Open(path string) (*DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: logging.WithComponent("badger")})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := bdb.GetSequence([]byte(feedbackSeqKey), 128)
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("feedback sequence: %w", err)
	}
	return &DB{bdb: bdb, seq: seq}, nil
}

// Close releases the sequence lease and closes the database.
func (d *DB) Close() error {
	if err := d.seq.Release(); err != nil {
		_ = d.bdb.Close()
		return err
	}
	return d.bdb.Close()
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (d *DB) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnRetries {
		err = d.bdb.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// feedbackKey sorts by creation time, then insertion sequence.
func feedbackKey(createdAt time.Time, seq uint64) []byte {
	key := make([]byte, 0, len(prefixFeedback)+16)
	key = append(key, prefixFeedback...)
	key = binary.BigEndian.AppendUint64(key, uint64(createdAt.UnixNano()))
	key = binary.BigEndian.AppendUint64(key, seq)
	return key
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msgf(format, args...)
}

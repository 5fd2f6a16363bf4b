// Package store opens the configured persistence backend.
package store

import (
	"fmt"

	"feedback/internal/adapter/badger"
	"feedback/internal/adapter/memory"
	"feedback/internal/adapter/mongo"
	"feedback/internal/adapter/postgres"
	"feedback/internal/config"
	"feedback/internal/domain"
	"feedback/internal/logging"
)

// Store bundles the repositories of one backend.
type Store struct {
	Driver   string
	Users    domain.UserRepository
	Feedback domain.FeedbackRepository
	Sessions domain.SessionRepository

	close func() error
}

// Close releases the backend's resources.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.Driver. It is called once at
// startup; the returned Store is shared by every request.
func Open(cfg config.StoreConfig) (*Store, error) {
	logging.Info().Str("driver", cfg.Driver).Msg("opening store")

	switch cfg.Driver {
	case config.DriverMemory:
		db := memory.New()
		return &Store{Driver: cfg.Driver, Users: db, Feedback: db, Sessions: db.NewSessionRepo(), close: db.Close}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Store{Driver: cfg.Driver, Users: db, Feedback: db, Sessions: postgres.NewSessionRepo(db), close: db.Close}, nil

	case config.DriverMongo:
		db, err := mongo.Open(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return &Store{Driver: cfg.Driver, Users: db, Feedback: db, Sessions: mongo.NewSessionRepo(db), close: db.Close}, nil

	case config.DriverBadger:
		db, err := badger.Open(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.Driver, Users: db, Feedback: db, Sessions: badger.NewSessionRepo(db), close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"feedback/internal/domain"
)

type sessionDoc struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Username  string    `bson:"username"`
	ExpiresAt time.Time `bson:"expires"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SessionRepo stores sessions in the sessions collection.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.sessions.InsertOne(ctx, sessionDoc{
		Token:     s.Token,
		UserID:    s.UserID,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: s.CreatedAt.UTC(),
	})
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var doc sessionDoc
	err := r.db.sessions.FindOne(ctx, bson.D{{Key: "_id", Value: token}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     doc.Token,
		UserID:    doc.UserID,
		Username:  doc.Username,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sessions.DeleteOne(ctx, bson.D{{Key: "_id", Value: token}})
	return err
}

// DeleteExpired deletes sessions the TTL monitor has not yet reaped.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.sessions.DeleteMany(ctx, bson.D{{Key: "expires", Value: bson.D{{Key: "$lte", Value: now.UTC()}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"feedback/internal/domain"
)

type feedbackDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	Username  string        `bson:"username"`
	Rating    int           `bson:"rating"`
	Comment   string        `bson:"comment"`
	CreatedAt time.Time     `bson:"createdAt"`
}

// CreateFeedback validates and inserts a feedback document.
func (d *DB) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	userID, err := bson.ObjectIDFromHex(f.UserID)
	if err != nil {
		return fmt.Errorf("create feedback: %w: userId: %v", domain.ErrInvalidFeedback, err)
	}

	doc := feedbackDoc{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Username:  f.Username,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt.UTC(),
	}
	if _, err := d.feedback.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	f.ID = doc.ID.Hex()
	return nil
}

// ListFeedbackNewestFirst returns all feedback ordered by creation time descending.
func (d *DB) ListFeedbackNewestFirst(ctx context.Context) ([]domain.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := d.feedback.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx) //nolint:errcheck

	out := make([]domain.Feedback, 0)
	for cur.Next(ctx) {
		var doc feedbackDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domain.Feedback{
			ID:        doc.ID.Hex(),
			UserID:    doc.UserID.Hex(),
			Username:  doc.Username,
			Rating:    doc.Rating,
			Comment:   doc.Comment,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, cur.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"feedback/internal/domain"
)

// CreateFeedback validates and inserts a feedback record.
func (d *DB) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	id := uuid.NewString()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO feedback (id, user_id, username, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		id, f.UserID, f.Username, f.Rating, f.Comment, f.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create feedback: %w", mapError(err))
	}
	f.ID = id
	return nil
}

// ListFeedbackNewestFirst returns all feedback ordered by creation time descending.
func (d *DB) ListFeedbackNewestFirst(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, user_id, username, rating, comment, created_at FROM feedback ORDER BY created_at DESC, seq DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Feedback, 0)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Username, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

package app

import (
	"context"
	"time"

	"feedback/internal/domain"
	"feedback/internal/metrics"
)

// FeedbackService encapsulates feedback submission and listing.
type FeedbackService struct {
	repo domain.FeedbackRepository
	now  func() time.Time
}

// NewFeedbackService creates a FeedbackService backed by the given repository.
func NewFeedbackService(repo domain.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo, now: time.Now}
}

// Submit stores a feedback record owned by the session's user. Range and
// presence checks are left to the repository's schema validation.
func (s *FeedbackService) Submit(ctx context.Context, session *domain.Session, rating int, comment string) error {
	if session == nil {
		return domain.ErrUnauthenticated
	}
	f := &domain.Feedback{
		UserID:    session.UserID,
		Username:  session.Username,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateFeedback(ctx, f); err != nil {
		return err
	}
	metrics.RecordFeedback(rating)
	return nil
}

// List returns every feedback record, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	items, err := s.repo.ListFeedbackNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Feedback{}
	}
	return items, nil
}

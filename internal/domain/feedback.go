package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Feedback is a single user-submitted review. Username is a copy taken at
// submission time and is not kept in sync with the owning user.
type Feedback struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Rating    int       `json:"rating" validate:"min=1,max=5"`
	Comment   string    `json:"comment" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedbackRepository is the port for feedback persistence.
//
// Implementations must call Validate before writing and reject records that
// fail it.
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, f *Feedback) error
	ListFeedbackNewestFirst(ctx context.Context) ([]Feedback, error)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the feedback against its storage schema. The returned
// error wraps ErrInvalidFeedback.
func (f *Feedback) Validate() error {
	err := Validator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed on %q", ErrInvalidFeedback, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
}

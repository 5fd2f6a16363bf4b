package postgres

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"feedback/internal/domain"
)

func TestMapError(t *testing.T) {
	dup := &pq.Error{Code: codeUniqueViolation, Constraint: "users_email_key"}
	if err := mapError(dup); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("unique violation: expected ErrDuplicateUser, got %v", err)
	}

	check := &pq.Error{Code: codeCheckViolation, Constraint: "feedback_rating_check"}
	err := mapError(check)
	if !errors.Is(err, domain.ErrInvalidFeedback) {
		t.Errorf("check violation: expected ErrInvalidFeedback, got %v", err)
	}

	other := errors.New("connection reset")
	if err := mapError(other); err != other {
		t.Errorf("other errors must pass through, got %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
}

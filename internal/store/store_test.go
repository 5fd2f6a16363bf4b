package store

import (
	"context"
	"testing"

	"feedback/internal/config"
	"feedback/internal/domain"
)

func TestOpen_EmbeddedDrivers(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			s, err := Open(config.StoreConfig{Driver: driver})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()

			ctx := context.Background()
			u := &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}
			if err := s.Users.Create(ctx, u); err != nil {
				t.Fatalf("Create: %v", err)
			}
			f := &domain.Feedback{UserID: u.ID, Username: u.Username, Rating: 5, Comment: "great"}
			if err := s.Feedback.CreateFeedback(ctx, f); err != nil {
				t.Fatalf("CreateFeedback: %v", err)
			}
			items, err := s.Feedback.ListFeedbackNewestFirst(ctx)
			if err != nil || len(items) != 1 {
				t.Fatalf("List: %v, %v", items, err)
			}
			if s.Sessions == nil {
				t.Error("expected a session repository")
			}
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(config.StoreConfig{Driver: "sqlite"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

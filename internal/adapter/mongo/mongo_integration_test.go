//go:build integration

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"feedback/internal/domain"
)

func startMongo(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.PortEndpoint(ctx, "27017/tcp", "mongodb")
	if err != nil {
		t.Fatal(err)
	}
	db, err := Open(endpoint, "feedback_test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMongo_Integration(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()

	alice := &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := db.Create(ctx, alice); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Create(ctx, &domain.User{Username: "alice", Email: "b@x.com"}); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}
	got, err := db.FindByUsernameOrEmail(ctx, "nobody", "a@x.com")
	if err != nil || got == nil || got.ID != alice.ID {
		t.Fatalf("FindByUsernameOrEmail: %+v, %v", got, err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, c := range []string{"first", "second"} {
		f := &domain.Feedback{UserID: alice.ID, Username: "alice", Rating: 3, Comment: c, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := db.CreateFeedback(ctx, f); err != nil {
			t.Fatalf("CreateFeedback: %v", err)
		}
	}
	items, err := db.ListFeedbackNewestFirst(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Comment != "second" {
		t.Errorf("unexpected order: %+v", items)
	}

	sessions := NewSessionRepo(db)
	now := time.Now()
	if err := sessions.Create(ctx, &domain.Session{Token: "t1", UserID: alice.ID, Username: "alice", ExpiresAt: now.Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}
	n, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
}

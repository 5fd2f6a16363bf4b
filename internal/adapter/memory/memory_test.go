package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedback/internal/domain"
)

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u := &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}
	if err := db.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Error("expected ID to be assigned")
	}

	got, err := db.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("expected alice, got %+v", got)
	}

	missing, err := db.GetByEmail(ctx, "nobody@x.com")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for unknown email, got (%v, %v)", missing, err)
	}

	byName, _ := db.FindByUsernameOrEmail(ctx, "alice", "other@x.com")
	if byName == nil {
		t.Error("expected match on username")
	}
	byEmail, _ := db.FindByUsernameOrEmail(ctx, "bob", "a@x.com")
	if byEmail == nil {
		t.Error("expected match on email")
	}
	none, _ := db.FindByUsernameOrEmail(ctx, "bob", "b@x.com")
	if none != nil {
		t.Error("expected no match")
	}

	// Uniqueness on both fields.
	dupName := &domain.User{Username: "alice", Email: "new@x.com"}
	if err := db.Create(ctx, dupName); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for username, got %v", err)
	}
	dupEmail := &domain.User{Username: "alice2", Email: "a@x.com"}
	if err := db.Create(ctx, dupEmail); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for email, got %v", err)
	}
	if len(db.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(db.users))
	}
}

func TestFeedbackRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Now().UTC()

	inputs := []domain.Feedback{
		{UserID: "u1", Username: "alice", Rating: 4, Comment: "second", CreatedAt: base.Add(time.Second)},
		{UserID: "u2", Username: "bob", Rating: 2, Comment: "first", CreatedAt: base},
		{UserID: "u1", Username: "alice", Rating: 5, Comment: "third", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range inputs {
		if err := db.CreateFeedback(ctx, &inputs[i]); err != nil {
			t.Fatalf("CreateFeedback: %v", err)
		}
	}

	items, err := db.ListFeedbackNewestFirst(ctx)
	if err != nil {
		t.Fatalf("ListFeedbackNewestFirst: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, c := range want {
		if items[i].Comment != c {
			t.Errorf("position %d: expected %q, got %q", i, c, items[i].Comment)
		}
	}
}

func TestFeedbackRepository_TiesNewestInsertFirst(t *testing.T) {
	db := New()
	ctx := context.Background()
	at := time.Now().UTC()

	for _, c := range []string{"a", "b", "c"} {
		f := &domain.Feedback{UserID: "u1", Username: "alice", Rating: 3, Comment: c, CreatedAt: at}
		if err := db.CreateFeedback(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	items, _ := db.ListFeedbackNewestFirst(ctx)
	if items[0].Comment != "c" || items[2].Comment != "a" {
		t.Errorf("expected c,b,a got %s,%s,%s", items[0].Comment, items[1].Comment, items[2].Comment)
	}
}

func TestFeedbackRepository_RejectsSchemaViolations(t *testing.T) {
	db := New()
	ctx := context.Background()

	for _, f := range []domain.Feedback{
		{UserID: "u1", Username: "alice", Rating: 0, Comment: "x"},
		{UserID: "u1", Username: "alice", Rating: 6, Comment: "x"},
		{UserID: "u1", Username: "alice", Rating: 3, Comment: ""},
	} {
		f := f
		if err := db.CreateFeedback(ctx, &f); !errors.Is(err, domain.ErrInvalidFeedback) {
			t.Errorf("expected ErrInvalidFeedback for %+v, got %v", f, err)
		}
	}
	if len(db.feedback) != 0 {
		t.Errorf("expected no stored feedback, got %d", len(db.feedback))
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()
	now := time.Now()

	live := &domain.Session{Token: "live", UserID: "u1", Username: "alice", ExpiresAt: now.Add(time.Hour)}
	dead := &domain.Session{Token: "dead", UserID: "u1", Username: "alice", ExpiresAt: now.Add(-time.Hour)}
	if err := repo.Create(ctx, live); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, dead); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByToken(ctx, "live")
	if err != nil || got == nil || got.Username != "alice" {
		t.Fatalf("GetByToken live: %+v, %v", got, err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session removed, got %d", n)
	}

	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
	got, _ = repo.GetByToken(ctx, "live")
	if got != nil {
		t.Error("expected session to be gone")
	}
}

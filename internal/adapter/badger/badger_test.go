package badger

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback/internal/domain"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUsers(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	alice := &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	got, err := db.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	got, err = db.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = db.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = db.FindByUsernameOrEmail(ctx, "alice", "other@x.com")
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = db.FindByUsernameOrEmail(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, db.Create(ctx, &domain.User{Username: "alice", Email: "new@x.com"}), domain.ErrDuplicateUser)
	assert.ErrorIs(t, db.Create(ctx, &domain.User{Username: "alice2", Email: "a@x.com"}), domain.ErrDuplicateUser)
}

func TestUsers_ConcurrentSignupSameName(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- db.Create(ctx, &domain.User{Username: "alice", Email: string(rune('a'+i)) + "@x.com"})
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}

func TestFeedback_NewestFirst(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, f := range []domain.Feedback{
		{UserID: "u1", Username: "alice", Rating: 4, Comment: "second", CreatedAt: base.Add(time.Second)},
		{UserID: "u2", Username: "bob", Rating: 2, Comment: "first", CreatedAt: base},
		{UserID: "u1", Username: "alice", Rating: 5, Comment: "third", CreatedAt: base.Add(2 * time.Second)},
		{UserID: "u2", Username: "bob", Rating: 1, Comment: "third-tie", CreatedAt: base.Add(2 * time.Second)},
	} {
		require.NoError(t, db.CreateFeedback(ctx, &f))
		assert.NotEmpty(t, f.ID)
	}

	items, err := db.ListFeedbackNewestFirst(ctx)
	require.NoError(t, err)
	var comments []string
	for _, f := range items {
		comments = append(comments, f.Comment)
	}
	assert.Equal(t, []string{"third-tie", "third", "second", "first"}, comments)
}

func TestFeedback_EmptyListIsNotNil(t *testing.T) {
	db := openTest(t)
	items, err := db.ListFeedbackNewestFirst(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFeedback_RejectsSchemaViolations(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	for _, f := range []domain.Feedback{
		{UserID: "u1", Username: "alice", Rating: 0, Comment: "x"},
		{UserID: "u1", Username: "alice", Rating: 6, Comment: "x"},
		{UserID: "u1", Username: "alice", Rating: 3},
	} {
		assert.ErrorIs(t, db.CreateFeedback(ctx, &f), domain.ErrInvalidFeedback)
	}
	items, err := db.ListFeedbackNewestFirst(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedbackKeyOrdering(t *testing.T) {
	at := time.Unix(1000, 0)
	assert.Equal(t, -1, bytes.Compare(feedbackKey(at, 1), feedbackKey(at, 2)))
	assert.Equal(t, -1, bytes.Compare(feedbackKey(at, 9), feedbackKey(at.Add(time.Nanosecond), 0)))
}

func TestSessions(t *testing.T) {
	db := openTest(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.Session{Token: "live", UserID: "u1", Username: "alice", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.Session{Token: "dead", UserID: "u1", Username: "alice", ExpiresAt: now.Add(-time.Hour)}))

	got, err := repo.GetByToken(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, "live"))
	require.NoError(t, repo.Delete(ctx, "live"))
	got, err = repo.GetByToken(ctx, "live")
	require.NoError(t, err)
	assert.Nil(t, got)
}

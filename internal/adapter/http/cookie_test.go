package adapthttp

import (
	"testing"
	"time"

	"feedback/internal/domain"
)

// newSession builds a session expiring hours from now (negative for past).
func newSession(token string, hours int) *domain.Session {
	now := time.Now()
	return &domain.Session{
		Token:     token,
		UserID:    "u1",
		Username:  "alice",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(hours) * time.Hour),
	}
}

func TestCookieCodec(t *testing.T) {
	c := &cookieCodec{name: "s", secret: []byte("0123456789abcdef")}
	other := &cookieCodec{name: "s", secret: []byte("fedcba9876543210")}

	session := newSession("tok-1", 1)
	value, err := c.encode(session)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.decode(value)
	if err != nil || got != "tok-1" {
		t.Fatalf("decode: %q, %v", got, err)
	}
	if _, err := other.decode(value); err == nil {
		t.Error("expected signature failure with a different secret")
	}

	expired, err := c.encode(newSession("tok-2", -1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.decode(expired); err == nil {
		t.Error("expected expired cookie to be rejected")
	}
}

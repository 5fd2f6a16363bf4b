package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUserDocToDomain(t *testing.T) {
	id := bson.NewObjectID()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := userDoc{ID: id, Username: "alice", Email: "a@x.com", Password: "h", CreatedAt: at}.toDomain()

	if u.ID != id.Hex() {
		t.Errorf("expected ID %s, got %s", id.Hex(), u.ID)
	}
	if u.PasswordHash != "h" || u.Username != "alice" || u.Email != "a@x.com" {
		t.Errorf("unexpected user %+v", u)
	}
	if !u.CreatedAt.Equal(at) {
		t.Errorf("expected CreatedAt %v, got %v", at, u.CreatedAt)
	}
}

func TestFeedbackDocMarshalsOriginalFieldNames(t *testing.T) {
	doc := feedbackDoc{ID: bson.NewObjectID(), UserID: bson.NewObjectID(), Username: "alice", Rating: 4, Comment: "ok"}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"_id", "userId", "username", "rating", "comment", "createdAt"} {
		if _, err := bson.Raw(raw).LookupErr(key); err != nil {
			t.Errorf("expected key %q in document: %v", key, err)
		}
	}
}

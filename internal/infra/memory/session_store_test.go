package memory

import (
	"context"
	"errors"
	"testing"

	"quizmaster/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	rec := domain.SessionRecord{ID: "s1", Player: "alice", Category: "Books", Questions: sampleBank(2)}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	active, ok, err := store.Active(ctx, "alice", "Books")
	if err != nil || !ok || active.ID != "s1" {
		t.Fatalf("expected active s1, got %+v ok=%v err=%v", active, ok, err)
	}
	if _, ok, _ := store.Active(ctx, "bob", "Books"); ok {
		t.Fatalf("active index leaked across players")
	}

	rec.CurrentIndex, rec.Finished = 2, true
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save finished: %v", err)
	}
	if _, ok, _ := store.Active(ctx, "alice", "Books"); ok {
		t.Fatalf("expected active index cleared when finished")
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || !got.Finished {
		t.Fatalf("expected finished record kept, got %+v err=%v", got, err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

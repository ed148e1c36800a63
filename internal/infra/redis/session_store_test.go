package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizmaster/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	rec := domain.SessionRecord{ID: "s1", Player: "alice", Category: "Books", Questions: sampleBank(2)}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:s1") || !mr.Exists("quiz:active:alice:Books") {
		t.Fatalf("expected redis keys to be set")
	}
	if ttl := mr.TTL("quiz:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	active, ok, err := store.Active(ctx, "alice", "Books")
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}
	if active.ID != "s1" || len(active.Questions) != 2 || active.Questions[0].Correct != "b" {
		t.Fatalf("unexpected record %+v", active)
	}

	rec.CurrentIndex, rec.Mark, rec.Finished = 2, 1, true
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save finished: %v", err)
	}
	if mr.Exists("quiz:active:alice:Books") {
		t.Fatalf("expected active key to be removed")
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || !got.Finished || got.Mark != 1 {
		t.Fatalf("unexpected finished record %+v err=%v", got, err)
	}
}

func TestSessionStoreExpiredRecord(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if err := store.Save(ctx, domain.SessionRecord{ID: "s1", Player: "alice", Category: "Books"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.Del("quiz:session:s1")

	if _, ok, err := store.Active(ctx, "alice", "Books"); ok || err != nil {
		t.Fatalf("expected no active session, ok=%v err=%v", ok, err)
	}
	if mr.Exists("quiz:active:alice:Books") {
		t.Fatalf("expected dangling index removed")
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

package game

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizmaster/internal/domain"
)

func TestAssistLockedAndEmpty(t *testing.T) {
	c := NewAssistChannel(&fakeAssistant{reply: "hi"})
	ctx := context.Background()

	if _, err := c.Send(ctx, "hello"); !errors.Is(err, domain.ErrChannelLocked) {
		t.Fatalf("expected locked, got %v", err)
	}
	c.Unlock()
	if _, err := c.Send(ctx, "   "); !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected empty prompt, got %v", err)
	}
	if len(c.Transcript()) != 0 {
		t.Fatalf("refused sends must not touch the transcript")
	}
}

func TestAssistFailuresBecomeCannedTurns(t *testing.T) {
	cases := []struct {
		name string
		a    *fakeAssistant
		want string
	}{
		{"rate limited", &fakeAssistant{err: fmt.Errorf("provider: %w", domain.ErrRateLimited)}, RateLimitedReply},
		{"service error", &fakeAssistant{err: errors.New("boom")}, CannedReply},
		{"blank reply", &fakeAssistant{reply: "  "}, CannedReply},
		{"reply", &fakeAssistant{reply: "Paris"}, "Paris"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewAssistChannel(tc.a)
			c.Unlock()
			turn, err := c.Send(context.Background(), "capital of France?")
			if err != nil {
				t.Fatalf("send: %v", err)
			}
			if turn.Text != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, turn.Text)
			}
			tr := c.Transcript()
			if len(tr) != 2 || tr[0].Sender != domain.SenderPlayer || tr[1].Sender != domain.SenderAssistant {
				t.Fatalf("expected player then assistant turn, got %+v", tr)
			}
		})
	}
}

func TestAssistReplyDroppedAfterClose(t *testing.T) {
	a := &fakeAssistant{reply: "late", gate: make(chan struct{})}
	c := NewAssistChannel(a)
	c.Unlock()

	errs := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "hello")
		errs <- err
	}()
	for !c.Sending() {
		time.Sleep(time.Millisecond)
	}
	if _, err := c.Send(context.Background(), "again"); !errors.Is(err, domain.ErrCallInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}
	c.Close()
	close(a.gate)

	if err := <-errs; !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected stale reply, got %v", err)
	}
	if len(c.Transcript()) != 0 || c.Unlocked() {
		t.Fatalf("closed channel kept state")
	}
}

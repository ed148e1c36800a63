package game

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"quizmaster/internal/domain"
)

// CannedReply is appended when the assistant cannot answer.
const CannedReply = "The assistant is unavailable right now, please retry later."

// RateLimitedReply is appended when the assistant is rate limited.
const RateLimitedReply = "Too many questions at once, please retry later."

// AssistChannel is the conversational side-channel opened by a top-tier hint.
type AssistChannel struct {
	assistant Assistant

	mu         sync.Mutex
	unlocked   bool
	sending    bool
	generation uint64
	transcript []domain.Turn
}

func NewAssistChannel(assistant Assistant) *AssistChannel {
	return &AssistChannel{assistant: assistant}
}

// Unlock opens the channel for the current question.
func (c *AssistChannel) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlocked = true
}

// Close locks the channel and discards the transcript. Replies still in
// flight are dropped when they arrive.
func (c *AssistChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlocked = false
	c.sending = false
	c.transcript = nil
	c.generation++
}

func (c *AssistChannel) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

func (c *AssistChannel) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Transcript returns a copy of the turns so far.
func (c *AssistChannel) Transcript() []domain.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send appends the player's prompt, asks the assistant and appends exactly
// one assistant turn. Assistant failures become a canned turn, not an error.
func (c *AssistChannel) Send(ctx context.Context, prompt string) (domain.Turn, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Turn{}, domain.ErrEmptyPrompt
	}

	c.mu.Lock()
	if !c.unlocked {
		c.mu.Unlock()
		return domain.Turn{}, domain.ErrChannelLocked
	}
	if c.sending {
		c.mu.Unlock()
		return domain.Turn{}, domain.ErrCallInFlight
	}
	c.transcript = append(c.transcript, domain.Turn{Sender: domain.SenderPlayer, Text: prompt})
	c.sending = true
	gen := c.generation
	c.mu.Unlock()

	reply, err := c.assistant.AssistReply(ctx, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		log.Printf("assist reply dropped: channel closed while waiting")
		return domain.Turn{}, domain.ErrStaleResponse
	}
	c.sending = false

	turn := domain.Turn{Sender: domain.SenderAssistant, Text: reply}
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		log.Printf("assistant rate limited: %v", err)
		turn.Text = RateLimitedReply
	case err != nil:
		log.Printf("assistant error: %v", err)
		turn.Text = CannedReply
	case strings.TrimSpace(reply) == "":
		turn.Text = CannedReply
	}
	c.transcript = append(c.transcript, turn)
	return turn, nil
}

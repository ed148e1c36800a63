package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizmaster/internal/domain"
)

// DefaultSystemPrompt frames the model as a quiz helper.
const DefaultSystemPrompt = "You are a helpful quiz companion. Give hints that help the player reason, without stating the answer outright."

// Assistant adapts a Provider to single-prompt assist replies.
type Assistant struct {
	provider  Provider
	system    string
	maxTokens int
}

func NewAssistant(provider Provider, system string, maxTokens int) *Assistant {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Assistant{provider: provider, system: system, maxTokens: maxTokens}
}

// AssistReply asks the model for a reply to prompt. Rate limits are
// reported as domain.ErrRateLimited.
func (a *Assistant) AssistReply(ctx context.Context, prompt string) (string, error) {
	resp, err := a.provider.Generate(ctx, Request{
		System:    a.system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: a.maxTokens,
	})
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

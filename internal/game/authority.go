package game

import (
	"context"

	"quizmaster/internal/domain"
)

// Authority is the remote source of truth for quiz sessions.
type Authority interface {
	// ResolveQuiz returns the player's in-progress session for a catalog
	// category or creates one. Safe to repeat.
	ResolveQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error)
	// CreateQuiz instantiates a fresh session from a player-authored bank.
	CreateQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error)
	// VerifyAnswer returns the correct response for question index, which
	// must be the session's current question. Repeating the call for the
	// last verified index returns the same verdict, so it is safe to retry.
	VerifyAnswer(ctx context.Context, player, sessionID string, index int, selection string) (domain.Verdict, error)
	// RevealHint returns candidates guaranteed wrong for question index.
	RevealHint(ctx context.Context, player, sessionID string, index int, rarity domain.Rarity) ([]string, error)
}

// Assistant answers free-text prompts. A rate limit is reported as an
// error wrapping domain.ErrRateLimited.
type Assistant interface {
	AssistReply(ctx context.Context, prompt string) (string, error)
}

// Profiles is the player profile collaborator holding inventory and stats.
type Profiles interface {
	Inventory(ctx context.Context, player string) (domain.Inventory, error)
	ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error
	ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error
}

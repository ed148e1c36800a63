package memory

import (
	"context"
	"math/rand"
	"sync"

	"quizmaster/internal/domain"
)

// StaticTrivia serves catalog questions from memory. It stands in for the
// remote trivia source in tests and offline runs.
type StaticTrivia struct {
	mu      sync.RWMutex
	banks   map[string][]domain.StoredQuestion
	Shuffle bool
}

func NewStaticTrivia(banks map[string][]domain.StoredQuestion) *StaticTrivia {
	if banks == nil {
		banks = make(map[string][]domain.StoredQuestion)
	}
	return &StaticTrivia{banks: banks}
}

func (t *StaticTrivia) FetchQuestions(_ context.Context, category string, amount int) ([]domain.StoredQuestion, error) {
	t.mu.RLock()
	bank, ok := t.banks[category]
	t.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if len(bank) < amount {
		return nil, domain.ErrNotEnoughQuestions
	}
	out := make([]domain.StoredQuestion, len(bank))
	copy(out, bank)
	if t.Shuffle {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out[:amount], nil
}

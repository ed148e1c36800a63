package memory

import (
	"context"
	"errors"
	"testing"

	"quizmaster/internal/domain"
)

func TestStaticTriviaFetch(t *testing.T) {
	trivia := NewStaticTrivia(map[string][]domain.StoredQuestion{"Books": sampleBank(5)})
	trivia.Shuffle = true

	got, err := trivia.FetchQuestions(context.Background(), "Books", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}

	if _, err := trivia.FetchQuestions(context.Background(), "Books", 6); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Fatalf("expected not enough questions, got %v", err)
	}
	if _, err := trivia.FetchQuestions(context.Background(), "Film", 1); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
}

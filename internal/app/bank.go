package app

import (
	"fmt"
	"strings"

	"quizmaster/internal/domain"
)

// ValidateBank checks a player-authored bank before it is stored: it must
// hold at least size questions, each with distinct choices that include
// the correct response.
func ValidateBank(questions []domain.StoredQuestion, size int) error {
	if size <= 0 {
		size = DefaultQuizSize
	}
	if len(questions) < size {
		return fmt.Errorf("%w: %d questions, need %d", domain.ErrNotEnoughQuestions, len(questions), size)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrInvalidRequest, i+1)
		}
		if len(q.Choices) < 2 {
			return fmt.Errorf("%w: question %d needs at least two choices", domain.ErrInvalidRequest, i+1)
		}
		seen := make(map[string]bool, len(q.Choices))
		for _, c := range q.Choices {
			if seen[c] {
				return fmt.Errorf("%w: question %d repeats choice %q", domain.ErrInvalidRequest, i+1, c)
			}
			seen[c] = true
		}
		if !seen[q.Correct] {
			return fmt.Errorf("%w: question %d: correct response %q is not a choice", domain.ErrInvalidRequest, i+1, q.Correct)
		}
	}
	return nil
}

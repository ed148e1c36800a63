package game

import (
	"context"
	"fmt"
	"strings"

	"quizmaster/internal/domain"
)

// Resolution is a successfully resolved quiz session.
type Resolution struct {
	Category domain.Category
	Record   domain.QuizRecord
	// Notice is set for resumed sessions and must be shown to the player.
	Notice string
}

// Resolver decides where a category's questions come from and fetches
// the session record from the authority.
type Resolver struct {
	authority Authority
	catalog   []string
}

func NewResolver(authority Authority, catalog []string) *Resolver {
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog
	}
	return &Resolver{authority: authority, catalog: catalog}
}

// Category classifies a category name against the catalog.
func (r *Resolver) Category(name string) domain.Category {
	return domain.NewCategory(name, r.catalog)
}

// Resolve obtains a session for the player. Every failure wraps
// domain.ErrResolutionFailed and nothing is adopted.
func (r *Resolver) Resolve(ctx context.Context, player, name string) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" || player == "" {
		return Resolution{}, fmt.Errorf("%w: player and category are required", domain.ErrResolutionFailed)
	}

	category := r.Category(name)
	var (
		record domain.QuizRecord
		err    error
	)
	if category.Catalog {
		record, err = r.authority.ResolveQuiz(ctx, player, category.Name)
	} else {
		record, err = r.authority.CreateQuiz(ctx, player, category.Name)
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %w", domain.ErrResolutionFailed, err)
	}
	if err := validateRecord(record); err != nil {
		return Resolution{}, fmt.Errorf("%w: %w", domain.ErrResolutionFailed, err)
	}

	res := Resolution{Category: category, Record: record}
	if record.Resumed {
		res.Notice = fmt.Sprintf("Resuming your quiz at question %d of %d", record.CurrentIndex+1, len(record.Questions))
	}
	return res, nil
}

func validateRecord(record domain.QuizRecord) error {
	if record.SessionID == "" {
		return fmt.Errorf("authority returned no session id")
	}
	if len(record.Questions) == 0 {
		return fmt.Errorf("session %s has no questions", record.SessionID)
	}
	if record.CurrentIndex < 0 || record.CurrentIndex >= len(record.Questions) {
		return fmt.Errorf("session %s resumes at index %d outside [0, %d)", record.SessionID, record.CurrentIndex, len(record.Questions))
	}
	if record.Score < 0 || record.Score > record.CurrentIndex {
		return fmt.Errorf("session %s reports score %d before question %d", record.SessionID, record.Score, record.CurrentIndex+1)
	}
	return nil
}

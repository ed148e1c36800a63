package game

import (
	"context"
	"log"

	"quizmaster/internal/domain"
)

// Outcome summarizes a completed session.
type Outcome struct {
	SessionID     string
	Score         int
	QuestionCount int
	HintsUsed     int
}

// Perfect reports whether every question was answered correctly.
func (o Outcome) Perfect() bool {
	return o.QuestionCount > 0 && o.Score == o.QuestionCount
}

// Reconciler folds a finished session into the player's cumulative stats.
type Reconciler struct {
	profiles Profiles
}

func NewReconciler(profiles Profiles) *Reconciler {
	return &Reconciler{profiles: profiles}
}

// Delta computes the stats mutation for an outcome.
func (r *Reconciler) Delta(o Outcome) domain.StatsDelta {
	delta := domain.StatsDelta{
		QuizzesPlayed:    1,
		CorrectResponses: o.Score,
		CheatSheetsUsed:  o.HintsUsed,
	}
	if o.Perfect() {
		delta.PerfectMarks = 1
	}
	return delta
}

// Finalize forwards the outcome to the profile collaborator. The caller
// guarantees one call per session. A failed update is logged only.
func (r *Reconciler) Finalize(ctx context.Context, player string, o Outcome) domain.StatsDelta {
	delta := r.Delta(o)
	if err := r.profiles.ApplyStats(ctx, player, delta); err != nil {
		log.Printf("apply stats for %s after session %s: %v", player, o.SessionID, err)
	}
	return delta
}

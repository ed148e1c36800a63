package game

import "quizmaster/internal/domain"

// HintAffordance is the state of one tier's hint control.
type HintAffordance struct {
	Rarity        domain.Rarity
	Quantity      int
	Enabled       bool
	UnlocksAssist bool
}

// View is a read-only snapshot for rendering. The Can* flags are false
// while the matching call is in flight.
type View struct {
	Status        domain.Status
	SessionID     string
	Notice        string
	Index         int
	QuestionCount int
	Score         int
	Question      domain.Question
	Phase         domain.Phase
	Selection     string
	Correct       string
	Eliminated    []string
	HintUsed      bool
	Hints         []HintAffordance
	CanSelect     bool
	CanVerify     bool
	CanAdvance    bool
	AssistOpen    bool
	AssistBusy    bool
	Transcript    []domain.Turn
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Status:        s.status,
		SessionID:     s.id,
		Notice:        s.notice,
		Index:         s.index,
		QuestionCount: len(s.questions),
		Score:         s.score,
		Phase:         s.q.phase,
		Selection:     s.q.selection,
		Correct:       s.q.correct,
		HintUsed:      s.q.hintUsed,
		AssistOpen:    s.assist.Unlocked(),
		AssistBusy:    s.assist.Sending(),
		Transcript:    s.assist.Transcript(),
	}
	playing := s.requireInProgressLocked() == nil
	if !playing {
		return v
	}

	question := s.questions[s.index]
	v.Question = question
	for _, c := range question.Choices {
		if s.q.eliminated[c] {
			v.Eliminated = append(v.Eliminated, c)
		}
	}

	open := s.q.phase != domain.PhaseVerified
	v.CanSelect = open && !s.q.verifying
	v.CanVerify = open && !s.q.verifying && s.q.selection != ""
	v.CanAdvance = s.q.phase == domain.PhaseVerified

	for _, r := range s.ledger.Tiers() {
		qty := s.ledger.Available(r)
		v.Hints = append(v.Hints, HintAffordance{
			Rarity:        r,
			Quantity:      qty,
			Enabled:       open && !s.q.hintUsed && !s.q.hinting && qty > 0,
			UnlocksAssist: s.ledger.UnlocksAssist(r),
		})
	}
	return v
}

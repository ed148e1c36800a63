package game

import (
	"context"
	"fmt"
	"log"
	"sync"

	"quizmaster/internal/domain"
)

// Options tunes a Session.
type Options struct {
	// Catalog lists the predefined category names. Defaults to domain.DefaultCatalog.
	Catalog []string
	// AssistThreshold is the lowest tier that unlocks the assist channel.
	AssistThreshold domain.Rarity
}

// HintResult describes a granted hint.
type HintResult struct {
	Rarity         domain.Rarity
	Eliminated     []string
	AssistUnlocked bool
}

// questionState is everything scoped to the active question. Advance
// replaces it wholesale.
type questionState struct {
	phase      domain.Phase
	selection  string
	correct    string // empty until the authority confirms it
	eliminated map[string]bool
	hintUsed   bool
	verifying  bool
	hinting    bool
}

// requestTag identifies the state a remote call was issued for.
type requestTag struct {
	epoch uint64
	index int
}

// Session drives one quiz attempt from Loading to Completed. All state sits
// behind one mutex that is released while remote calls are outstanding;
// responses are matched against the epoch and question index they were
// issued for.
type Session struct {
	player     string
	category   string
	authority  Authority
	resolver   *Resolver
	ledger     *Ledger
	assist     *AssistChannel
	reconciler *Reconciler

	mu        sync.Mutex
	status    domain.Status
	resolving bool
	discarded bool
	epoch     uint64
	id        string
	questions []domain.Question
	index     int
	score     int
	q         questionState
	notice    string
	finalized bool
}

// NewSession prepares a session for player in category. Call Start to load it.
func NewSession(player, category string, authority Authority, assistant Assistant, profiles Profiles, opts Options) *Session {
	return &Session{
		player:     player,
		category:   category,
		authority:  authority,
		resolver:   NewResolver(authority, opts.Catalog),
		ledger:     NewLedger(profiles, opts.AssistThreshold),
		assist:     NewAssistChannel(assistant),
		reconciler: NewReconciler(profiles),
		status:     domain.StatusLoading,
	}
}

// Start resolves the session and loads the player's inventory. On failure
// the session stays Loading and Start may be retried.
func (s *Session) Start(ctx context.Context) (Resolution, error) {
	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return Resolution{}, domain.ErrNotInProgress
	}
	if s.status != domain.StatusLoading {
		s.mu.Unlock()
		return Resolution{}, domain.ErrAlreadyStarted
	}
	if s.resolving {
		s.mu.Unlock()
		return Resolution{}, domain.ErrCallInFlight
	}
	s.resolving = true
	tag := s.tagLocked()
	s.mu.Unlock()

	res, err := s.resolver.Resolve(ctx, s.player, s.category)
	if err == nil {
		if loadErr := s.ledger.Load(ctx, s.player); loadErr != nil {
			err = fmt.Errorf("%w: load inventory: %w", domain.ErrResolutionFailed, loadErr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(tag) {
		return Resolution{}, domain.ErrStaleResponse
	}
	s.resolving = false
	if err != nil {
		return Resolution{}, err
	}

	s.id = res.Record.SessionID
	s.questions = res.Record.Questions
	s.index = res.Record.CurrentIndex
	s.score = res.Record.Score
	s.notice = res.Notice
	s.q = questionState{}
	s.status = domain.StatusInProgress
	if res.Notice != "" {
		log.Printf("session %s resumed at question %d", s.id, s.index+1)
	}
	return res, nil
}

// SelectChoice sets the selection for the active question.
func (s *Session) SelectChoice(choice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked(); err != nil {
		return err
	}
	if s.q.phase == domain.PhaseVerified {
		return domain.ErrAlreadyVerified
	}
	if s.q.verifying {
		return domain.ErrCallInFlight
	}
	if !s.questions[s.index].HasChoice(choice) {
		return domain.ErrUnknownChoice
	}
	if s.q.eliminated[choice] {
		return domain.ErrChoiceEliminated
	}
	s.q.selection = choice
	s.q.phase = domain.PhaseSelected
	return nil
}

// Verify asks the authority for the correct response to the active
// question. On failure the selection is kept and Verify may be retried.
func (s *Session) Verify(ctx context.Context) (domain.Verdict, error) {
	s.mu.Lock()
	if err := s.requireInProgressLocked(); err != nil {
		s.mu.Unlock()
		return domain.Verdict{}, err
	}
	if s.q.phase == domain.PhaseVerified {
		s.mu.Unlock()
		return domain.Verdict{}, domain.ErrAlreadyVerified
	}
	if s.q.verifying {
		s.mu.Unlock()
		return domain.Verdict{}, domain.ErrCallInFlight
	}
	if s.q.selection == "" {
		s.mu.Unlock()
		return domain.Verdict{}, domain.ErrNoSelection
	}
	s.q.verifying = true
	tag := s.tagLocked()
	sessionID, selection := s.id, s.q.selection
	s.mu.Unlock()

	verdict, err := s.authority.VerifyAnswer(ctx, s.player, sessionID, tag.index, selection)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(tag) {
		log.Printf("session %s: dropping verification for question %d", sessionID, tag.index+1)
		return domain.Verdict{}, domain.ErrStaleResponse
	}
	s.q.verifying = false
	if err != nil {
		return domain.Verdict{}, err
	}
	if verdict.Index != tag.index {
		log.Printf("session %s: verdict for question %d while on %d", sessionID, verdict.Index+1, tag.index+1)
		return domain.Verdict{}, domain.ErrStaleResponse
	}
	s.q.correct = verdict.Correct
	s.q.phase = domain.PhaseVerified
	return verdict, nil
}

// Advance leaves a verified question, scoring it once. It reports whether
// the session is now Completed.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if err := s.requireInProgressLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.q.phase != domain.PhaseVerified {
		s.mu.Unlock()
		return false, domain.ErrNotVerified
	}
	if s.q.selection == s.q.correct {
		s.score++
	}
	s.epoch++
	s.assist.Close()

	if s.index+1 < len(s.questions) {
		s.index++
		s.q = questionState{}
		s.mu.Unlock()
		return false, nil
	}

	s.status = domain.StatusCompleted
	if s.finalized {
		s.mu.Unlock()
		return true, nil
	}
	s.finalized = true
	outcome := Outcome{
		SessionID:     s.id,
		Score:         s.score,
		QuestionCount: len(s.questions),
		HintsUsed:     s.ledger.Used(),
	}
	s.mu.Unlock()

	s.reconciler.Finalize(ctx, s.player, outcome)
	return true, nil
}

// UseHint spends one cheat sheet of the given tier on the active question.
// Refusals (ErrHintAlreadyUsed, ErrNoCheatSheets, ErrAlreadyVerified) make
// no remote call and change nothing.
func (s *Session) UseHint(ctx context.Context, rarity domain.Rarity) (HintResult, error) {
	s.mu.Lock()
	if err := s.requireInProgressLocked(); err != nil {
		s.mu.Unlock()
		return HintResult{}, err
	}
	if s.q.phase == domain.PhaseVerified {
		s.mu.Unlock()
		return HintResult{}, domain.ErrAlreadyVerified
	}
	if s.q.hintUsed {
		s.mu.Unlock()
		return HintResult{}, domain.ErrHintAlreadyUsed
	}
	if s.q.hinting || s.q.verifying {
		s.mu.Unlock()
		return HintResult{}, domain.ErrCallInFlight
	}
	if s.ledger.Available(rarity) < 1 {
		s.mu.Unlock()
		return HintResult{}, domain.ErrNoCheatSheets
	}

	if s.ledger.UnlocksAssist(rarity) {
		if err := s.ledger.Spend(rarity); err != nil {
			s.mu.Unlock()
			return HintResult{}, err
		}
		s.q.hintUsed = true
		s.assist.Unlock()
		s.mu.Unlock()

		s.ledger.Persist(ctx, s.player, rarity)
		return HintResult{Rarity: rarity, AssistUnlocked: true}, nil
	}

	s.q.hinting = true
	tag := s.tagLocked()
	sessionID := s.id
	s.mu.Unlock()

	eliminated, err := s.authority.RevealHint(ctx, s.player, sessionID, tag.index, rarity)

	s.mu.Lock()
	if !s.currentLocked(tag) {
		s.mu.Unlock()
		log.Printf("session %s: dropping hint for question %d", sessionID, tag.index+1)
		return HintResult{}, domain.ErrStaleResponse
	}
	s.q.hinting = false
	if err != nil {
		s.mu.Unlock()
		return HintResult{}, err
	}
	if s.q.phase == domain.PhaseVerified {
		s.mu.Unlock()
		return HintResult{}, domain.ErrAlreadyVerified
	}

	question := s.questions[s.index]
	removed := make(map[string]bool, len(eliminated))
	kept := make([]string, 0, len(eliminated))
	for _, c := range eliminated {
		if question.HasChoice(c) && !removed[c] {
			removed[c] = true
			kept = append(kept, c)
		}
	}
	if len(eliminated) > 0 && len(kept) == 0 {
		s.mu.Unlock()
		log.Printf("session %s: hint names no choice of question %d", sessionID, tag.index+1)
		return HintResult{}, domain.ErrStaleResponse
	}
	if err := s.ledger.Spend(rarity); err != nil {
		s.mu.Unlock()
		return HintResult{}, err
	}

	s.q.hintUsed = true
	s.q.eliminated = removed
	if s.q.eliminated[s.q.selection] {
		s.q.selection = ""
		s.q.phase = domain.PhaseUnanswered
	}
	s.mu.Unlock()

	s.ledger.Persist(ctx, s.player, rarity)
	return HintResult{Rarity: rarity, Eliminated: kept}, nil
}

// Ask sends a prompt on the assist channel.
func (s *Session) Ask(ctx context.Context, prompt string) (domain.Turn, error) {
	s.mu.Lock()
	if err := s.requireInProgressLocked(); err != nil {
		s.mu.Unlock()
		return domain.Turn{}, err
	}
	s.mu.Unlock()
	return s.assist.Send(ctx, prompt)
}

// Leave discards the session. Responses still in flight are ignored.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded = true
	s.epoch++
	s.assist.Close()
}

// FinalScore renders the score as "score / questionCount".
func (s *Session) FinalScore() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%d / %d", s.score, len(s.questions))
}

// Score returns the running score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Status returns the lifecycle state.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Transcript returns the assist channel's turns for the active question.
func (s *Session) Transcript() []domain.Turn {
	return s.assist.Transcript()
}

func (s *Session) requireInProgressLocked() error {
	if s.discarded || s.status != domain.StatusInProgress {
		return domain.ErrNotInProgress
	}
	return nil
}

func (s *Session) tagLocked() requestTag {
	return requestTag{epoch: s.epoch, index: s.index}
}

func (s *Session) currentLocked(tag requestTag) bool {
	return !s.discarded && tag.epoch == s.epoch && tag.index == s.index
}

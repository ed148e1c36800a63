package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizmaster/internal/domain"
)

// DefaultQuizSize is the number of questions in one attempt.
const DefaultQuizSize = 10

// DefaultEliminate maps each rarity to how many wrong choices its hint removes.
var DefaultEliminate = map[domain.Rarity]int{
	domain.RarityCommon: 1,
	domain.RarityRare:   2,
	domain.RarityEpic:   3,
}

// SessionRepository abstracts how quiz session records are stored (in-memory, Redis, etc).
// Save also maintains the active session index: unfinished records become the
// active session for their (player, category), finished ones clear it.
type SessionRepository interface {
	Save(ctx context.Context, rec domain.SessionRecord) error
	Get(ctx context.Context, id string) (domain.SessionRecord, error)
	Active(ctx context.Context, player, category string) (domain.SessionRecord, bool, error)
}

// TriviaSource fetches fresh questions for catalog categories.
type TriviaSource interface {
	FetchQuestions(ctx context.Context, category string, amount int) ([]domain.StoredQuestion, error)
}

// BankRepository loads a player's authored questions (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error)
}

// ProfileRepository stores cheat-sheet inventories and cumulative stats.
type ProfileRepository interface {
	Inventory(ctx context.Context, player string) (domain.Inventory, error)
	ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error
	ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error
	Stats(ctx context.Context, player string) (domain.Stats, error)
}

// Assistant answers free-form prompts.
type Assistant interface {
	AssistReply(ctx context.Context, prompt string) (string, error)
}

// Options tunes the service.
type Options struct {
	QuizSize  int
	Eliminate map[domain.Rarity]int
	Now       func() time.Time
}

// QuizService is the authority for quiz sessions: it owns the questions and
// their answers, verifies selections and meters profiles.
type QuizService struct {
	sessions  SessionRepository
	trivia    TriviaSource
	banks     BankRepository
	profiles  ProfileRepository
	assistant Assistant

	size      int
	eliminate map[domain.Rarity]int
	now       func() time.Time
}

func NewQuizService(sessions SessionRepository, trivia TriviaSource, banks BankRepository, profiles ProfileRepository, assistant Assistant, opts Options) *QuizService {
	if opts.QuizSize <= 0 {
		opts.QuizSize = DefaultQuizSize
	}
	if len(opts.Eliminate) == 0 {
		opts.Eliminate = DefaultEliminate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &QuizService{
		sessions:  sessions,
		trivia:    trivia,
		banks:     banks,
		profiles:  profiles,
		assistant: assistant,
		size:      opts.QuizSize,
		eliminate: opts.Eliminate,
		now:       opts.Now,
	}
}

// ResolveQuiz returns the player's unfinished session for a catalog category,
// or starts a new one with fresh questions from the trivia source.
func (s *QuizService) ResolveQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error) {
	if err := requireNames(player, category); err != nil {
		return domain.QuizRecord{}, err
	}
	rec, ok, err := s.sessions.Active(ctx, player, category)
	if err != nil {
		return domain.QuizRecord{}, fmt.Errorf("lookup active session: %w", err)
	}
	if ok {
		log.Printf("resuming session %s for %s at question %d", rec.ID, player, rec.CurrentIndex+1)
		return rec.QuizRecord(true), nil
	}

	questions, err := s.trivia.FetchQuestions(ctx, category, s.size)
	if err != nil {
		return domain.QuizRecord{}, fmt.Errorf("fetch trivia: %w", err)
	}
	if len(questions) == 0 {
		return domain.QuizRecord{}, domain.ErrNotEnoughQuestions
	}
	if len(questions) > s.size {
		questions = questions[:s.size]
	}
	return s.start(ctx, player, category, questions)
}

// CreateQuiz starts a session over the player's authored bank for category.
func (s *QuizService) CreateQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error) {
	if err := requireNames(player, category); err != nil {
		return domain.QuizRecord{}, err
	}
	bank, err := s.banks.GetBank(ctx, player, category)
	if err != nil {
		return domain.QuizRecord{}, err
	}
	if len(bank) < s.size {
		return domain.QuizRecord{}, fmt.Errorf("%w: %q has %d, need %d", domain.ErrNotEnoughQuestions, category, len(bank), s.size)
	}

	picked := make([]domain.StoredQuestion, len(bank))
	copy(picked, bank)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return s.start(ctx, player, category, picked[:s.size])
}

func (s *QuizService) start(ctx context.Context, player, category string, questions []domain.StoredQuestion) (domain.QuizRecord, error) {
	now := s.now()
	rec := domain.SessionRecord{
		ID:        uuid.NewString(),
		Player:    player,
		Category:  category,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, rec); err != nil {
		return domain.QuizRecord{}, fmt.Errorf("save session: %w", err)
	}
	return rec.QuizRecord(false), nil
}

// VerifyAnswer returns the correct response for question index of the
// player's session, banks the mark and moves the session forward. Repeating
// the verification of the last verified question replays its verdict
// without banking again.
func (s *QuizService) VerifyAnswer(ctx context.Context, player, sessionID string, index int, selection string) (domain.Verdict, error) {
	rec, err := s.owned(ctx, player, sessionID)
	if err != nil {
		return domain.Verdict{}, err
	}
	if rec.Last != nil && rec.Last.Index == index {
		return *rec.Last, nil
	}
	if err := current(rec, index); err != nil {
		return domain.Verdict{}, err
	}
	q := rec.Questions[rec.CurrentIndex]
	if !q.Public().HasChoice(selection) {
		return domain.Verdict{}, domain.ErrUnknownChoice
	}

	verdict := domain.Verdict{Correct: q.Correct, Index: rec.CurrentIndex}
	if selection == q.Correct {
		rec.Mark++
	}
	rec.CurrentIndex++
	rec.Finished = rec.CurrentIndex == len(rec.Questions)
	rec.UpdatedAt = s.now()
	verdict.Finished = rec.Finished
	rec.Last = &verdict

	if err := s.sessions.Save(ctx, rec); err != nil {
		return domain.Verdict{}, fmt.Errorf("save session: %w", err)
	}
	return verdict, nil
}

// RevealHint picks wrong choices of question index to eliminate.
func (s *QuizService) RevealHint(ctx context.Context, player, sessionID string, index int, rarity domain.Rarity) ([]string, error) {
	n, ok := s.eliminate[rarity]
	if !ok {
		return nil, fmt.Errorf("%w: no hint for rarity %d", domain.ErrInvalidRequest, rarity)
	}
	rec, err := s.owned(ctx, player, sessionID)
	if err != nil {
		return nil, err
	}
	if err := current(rec, index); err != nil {
		return nil, err
	}
	return pickWrong(rec.Questions[rec.CurrentIndex], n), nil
}

// owned loads a session and hides it from everyone but its player.
func (s *QuizService) owned(ctx context.Context, player, sessionID string) (domain.SessionRecord, error) {
	rec, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.Player != player {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

// current rejects requests for any question but the session's active one.
func current(rec domain.SessionRecord, index int) error {
	if rec.Finished || rec.CurrentIndex >= len(rec.Questions) {
		return domain.ErrSessionFinished
	}
	if index != rec.CurrentIndex {
		return fmt.Errorf("%w: question %d is not current, session is at %d", domain.ErrInvalidRequest, index+1, rec.CurrentIndex+1)
	}
	return nil
}

// pickWrong returns up to n randomly chosen wrong choices.
func pickWrong(q domain.StoredQuestion, n int) []string {
	wrong := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		if c != q.Correct {
			wrong = append(wrong, c)
		}
	}
	rand.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	if n > len(wrong) {
		n = len(wrong)
	}
	return wrong[:n]
}

// AssistReply forwards a prompt to the configured assistant.
func (s *QuizService) AssistReply(ctx context.Context, prompt string) (string, error) {
	if s.assistant == nil {
		return "", fmt.Errorf("assistant not configured")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", domain.ErrInvalidRequest)
	}
	return s.assistant.AssistReply(ctx, prompt)
}

// Inventory returns the player's cheat sheets.
func (s *QuizService) Inventory(ctx context.Context, player string) (domain.Inventory, error) {
	if player == "" {
		return nil, fmt.Errorf("%w: player is required", domain.ErrInvalidRequest)
	}
	return s.profiles.Inventory(ctx, player)
}

// ApplyInventory adjusts one tier; quantities never go negative.
func (s *QuizService) ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error {
	if player == "" {
		return fmt.Errorf("%w: player is required", domain.ErrInvalidRequest)
	}
	return s.profiles.ApplyInventory(ctx, player, delta)
}

// ApplyStats merges a stats delta.
func (s *QuizService) ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error {
	if player == "" {
		return fmt.Errorf("%w: player is required", domain.ErrInvalidRequest)
	}
	return s.profiles.ApplyStats(ctx, player, delta)
}

// Stats returns the player's cumulative stats.
func (s *QuizService) Stats(ctx context.Context, player string) (domain.Stats, error) {
	if player == "" {
		return domain.Stats{}, fmt.Errorf("%w: player is required", domain.ErrInvalidRequest)
	}
	return s.profiles.Stats(ctx, player)
}

func requireNames(player, category string) error {
	if strings.TrimSpace(player) == "" || strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: player and category are required", domain.ErrInvalidRequest)
	}
	return nil
}

package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quizmaster/internal/domain"
)

type fakeAuthority struct {
	mu        sync.Mutex
	sessionID string
	questions []domain.StoredQuestion
	index     int
	mark      int
	resumed   bool

	resolveErr error
	verifyErr  error
	revealErr  error
	// loseVerify applies the next verification but reports a transport failure.
	loseVerify bool
	// revealed, when set, replaces the computed hint result.
	revealed []string
	last     *domain.Verdict

	resolveCalls int
	createCalls  int
	verifyCalls  int
	revealCalls  int

	// verifyGate, when set, is received from before VerifyAnswer returns.
	verifyGate chan struct{}
	// verifyEntered, when set, is signalled when VerifyAnswer starts.
	verifyEntered chan struct{}
}

func newFakeAuthority(questions []domain.StoredQuestion) *fakeAuthority {
	return &fakeAuthority{sessionID: "session-1", questions: questions}
}

func (f *fakeAuthority) record() domain.QuizRecord {
	rec := domain.SessionRecord{
		ID:           f.sessionID,
		Category:     "Books",
		Questions:    f.questions,
		CurrentIndex: f.index,
		Mark:         f.mark,
	}
	return rec.QuizRecord(f.resumed)
}

func (f *fakeAuthority) ResolveQuiz(_ context.Context, _, _ string) (domain.QuizRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.resolveErr != nil {
		return domain.QuizRecord{}, f.resolveErr
	}
	return f.record(), nil
}

func (f *fakeAuthority) CreateQuiz(_ context.Context, _, _ string) (domain.QuizRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.resolveErr != nil {
		return domain.QuizRecord{}, f.resolveErr
	}
	return f.record(), nil
}

func (f *fakeAuthority) VerifyAnswer(_ context.Context, _, sessionID string, index int, selection string) (domain.Verdict, error) {
	if f.verifyEntered != nil {
		f.verifyEntered <- struct{}{}
	}
	if f.verifyGate != nil {
		<-f.verifyGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return domain.Verdict{}, f.verifyErr
	}
	if sessionID != f.sessionID {
		return domain.Verdict{}, domain.ErrSessionNotFound
	}
	if f.last != nil && f.last.Index == index {
		return *f.last, nil
	}
	if index != f.index {
		return domain.Verdict{}, domain.ErrInvalidRequest
	}
	q := f.questions[f.index]
	if selection == q.Correct {
		f.mark++
	}
	v := domain.Verdict{Correct: q.Correct, Index: f.index}
	f.index++
	v.Finished = f.index == len(f.questions)
	f.last = &v
	if f.loseVerify {
		f.loseVerify = false
		return domain.Verdict{}, errors.New("connection reset")
	}
	return v, nil
}

func (f *fakeAuthority) RevealHint(_ context.Context, _, _ string, index int, rarity domain.Rarity) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revealCalls++
	if f.revealErr != nil {
		return nil, f.revealErr
	}
	if f.revealed != nil {
		return f.revealed, nil
	}
	if index != f.index {
		return nil, domain.ErrInvalidRequest
	}
	n := int(rarity) - 2
	q := f.questions[f.index]
	var out []string
	for _, c := range q.Choices {
		if len(out) == n {
			break
		}
		if c != q.Correct {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	mu          sync.Mutex
	inventory   domain.Inventory
	stats       domain.Stats
	invDeltas   []domain.InventoryDelta
	statsDeltas []domain.StatsDelta
	invErr      error
	applyErr    error
}

func newFakeProfiles(inv domain.Inventory) *fakeProfiles {
	return &fakeProfiles{inventory: inv}
}

func (p *fakeProfiles) Inventory(_ context.Context, _ string) (domain.Inventory, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.invErr != nil {
		return nil, p.invErr
	}
	return p.inventory.Clone(), nil
}

func (p *fakeProfiles) ApplyInventory(_ context.Context, _ string, delta domain.InventoryDelta) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.applyErr != nil {
		return p.applyErr
	}
	p.invDeltas = append(p.invDeltas, delta)
	p.inventory[delta.Rarity] += delta.Delta
	return nil
}

func (p *fakeProfiles) ApplyStats(_ context.Context, _ string, delta domain.StatsDelta) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.applyErr != nil {
		return p.applyErr
	}
	p.statsDeltas = append(p.statsDeltas, delta)
	p.stats = p.stats.Apply(delta)
	return nil
}

type fakeAssistant struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []string
	gate  chan struct{}
}

func (a *fakeAssistant) AssistReply(_ context.Context, prompt string) (string, error) {
	if a.gate != nil {
		<-a.gate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, prompt)
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

// sampleQuestions builds n four-choice questions whose correct answer is "right-i".
func sampleQuestions(n int) []domain.StoredQuestion {
	out := make([]domain.StoredQuestion, n)
	for i := range out {
		right := fmt.Sprintf("right-%d", i)
		out[i] = domain.StoredQuestion{
			Text:    fmt.Sprintf("Question %d?", i+1),
			Choices: []string{fmt.Sprintf("wrong-a-%d", i), right, fmt.Sprintf("wrong-b-%d", i), fmt.Sprintf("wrong-c-%d", i)},
			Correct: right,
		}
	}
	return out
}

func fullInventory() domain.Inventory {
	return domain.Inventory{domain.RarityCommon: 2, domain.RarityRare: 2, domain.RarityEpic: 1}
}

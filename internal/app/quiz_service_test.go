package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/game"
	"quizmaster/internal/infra/memory"
)

func TestResolveQuizResumesActiveSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	first, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.Resumed || len(first.Questions) != app.DefaultQuizSize || first.CurrentIndex != 0 {
		t.Fatalf("unexpected new record %+v", first)
	}

	if _, err := service.VerifyAnswer(ctx, "alice", first.SessionID, 0, "right-0"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := service.VerifyAnswer(ctx, "alice", first.SessionID, 1, "wrong-1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	again, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.SessionID != first.SessionID || again.CurrentIndex != 2 || again.Score != 1 || !again.Resumed {
		t.Fatalf("expected resumed record at index 2, got %+v", again)
	}
	for i := range first.Questions {
		if first.Questions[i].Text != again.Questions[i].Text {
			t.Fatalf("question order changed at %d", i)
		}
	}

	other, err := service.ResolveQuiz(ctx, "bob", "Books")
	if err != nil {
		t.Fatalf("resolve bob: %v", err)
	}
	if other.SessionID == first.SessionID {
		t.Fatalf("players must not share sessions")
	}
}

func TestVerifyAnswerWalksToFinish(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	rec, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := service.VerifyAnswer(ctx, "alice", rec.SessionID, 0, "nope"); !errors.Is(err, domain.ErrUnknownChoice) {
		t.Fatalf("expected unknown choice, got %v", err)
	}

	var last domain.Verdict
	for i := 0; i < len(rec.Questions); i++ {
		last, err = service.VerifyAnswer(ctx, "alice", rec.SessionID, i, fmt.Sprintf("right-%d", i))
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if last.Index != i || last.Correct != fmt.Sprintf("right-%d", i) {
			t.Fatalf("unexpected verdict %+v", last)
		}
	}
	if !last.Finished {
		t.Fatalf("expected last verdict to finish the session")
	}
	if _, err := service.VerifyAnswer(ctx, "alice", rec.SessionID, 0, "right-0"); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected finished, got %v", err)
	}

	fresh, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve after finish: %v", err)
	}
	if fresh.SessionID == rec.SessionID || fresh.Resumed {
		t.Fatalf("expected a new session after finishing, got %+v", fresh)
	}
	if _, err := service.VerifyAnswer(ctx, "alice", "missing", 0, "a"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateQuizFromAuthoredBank(t *testing.T) {
	ctx := context.Background()
	service, banks := newTestService()

	banks.Put("alice", "Cats", triviaQuestions(8))
	if _, err := service.CreateQuiz(ctx, "alice", "Cats"); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Fatalf("expected not enough questions, got %v", err)
	}
	if _, err := service.CreateQuiz(ctx, "alice", "Dogs"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}

	banks.Put("alice", "Birds", triviaQuestions(15))
	rec, err := service.CreateQuiz(ctx, "alice", "Birds")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(rec.Questions) != app.DefaultQuizSize {
		t.Fatalf("expected %d questions, got %d", app.DefaultQuizSize, len(rec.Questions))
	}
	seen := make(map[string]bool)
	for _, q := range rec.Questions {
		if seen[q.Text] {
			t.Fatalf("duplicate question %q", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestRevealHintEliminatesWrongChoices(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	rec, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for rarity, want := range app.DefaultEliminate {
		got, err := service.RevealHint(ctx, "alice", rec.SessionID, 0, rarity)
		if err != nil {
			t.Fatalf("reveal %d: %v", rarity, err)
		}
		if len(got) != want {
			t.Fatalf("rarity %d: expected %d eliminated, got %v", rarity, want, got)
		}
		for _, c := range got {
			if c == "right-0" {
				t.Fatalf("correct response eliminated")
			}
		}
	}
	if _, err := service.RevealHint(ctx, "alice", rec.SessionID, 0, 9); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid rarity, got %v", err)
	}
}

func TestVerifyAnswerReplaysLastVerdict(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	rec, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	first, err := service.VerifyAnswer(ctx, "alice", rec.SessionID, 0, "right-0")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	again, err := service.VerifyAnswer(ctx, "alice", rec.SessionID, 0, "right-0")
	if err != nil || again != first {
		t.Fatalf("expected replayed verdict %+v, got %+v err=%v", first, again, err)
	}

	if _, err := service.VerifyAnswer(ctx, "alice", rec.SessionID, 2, "right-2"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected skipped question rejected, got %v", err)
	}
	if _, err := service.RevealHint(ctx, "alice", rec.SessionID, 0, domain.RarityCommon); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected hint for a verified question rejected, got %v", err)
	}

	resumed, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resumed.CurrentIndex != 1 || resumed.Score != 1 {
		t.Fatalf("replay must not bank twice, got index=%d score=%d", resumed.CurrentIndex, resumed.Score)
	}
}

func TestSessionsHiddenFromOtherPlayers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	rec, err := service.ResolveQuiz(ctx, "alice", "Books")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := service.VerifyAnswer(ctx, "bob", rec.SessionID, 0, "right-0"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found for another player, got %v", err)
	}
	if _, err := service.RevealHint(ctx, "bob", rec.SessionID, 0, domain.RarityCommon); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found for another player, got %v", err)
	}
}

// lossyAuthority applies the first verification and then loses its response.
type lossyAuthority struct {
	*app.QuizService
	lost bool
}

func (a *lossyAuthority) VerifyAnswer(ctx context.Context, player, sessionID string, index int, selection string) (domain.Verdict, error) {
	v, err := a.QuizService.VerifyAnswer(ctx, player, sessionID, index, selection)
	if err == nil && !a.lost {
		a.lost = true
		return domain.Verdict{}, errors.New("network: connection reset")
	}
	return v, err
}

func TestEngineRecoversFromLostVerification(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	authority := &lossyAuthority{QuizService: service}

	session := game.NewSession("alice", "Books", authority, service, service, game.Options{})
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.SelectChoice("right-0"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := session.Verify(ctx); err == nil {
		t.Fatalf("expected the first verification to fail")
	}
	verdict, err := session.Verify(ctx)
	if err != nil || verdict.Index != 0 || verdict.Correct != "right-0" {
		t.Fatalf("retry verify: %+v %v", verdict, err)
	}

	for i := 0; i < app.DefaultQuizSize; i++ {
		if i > 0 {
			if err := session.SelectChoice(fmt.Sprintf("wrong-%d", i)); err != nil {
				t.Fatalf("select %d: %v", i, err)
			}
			if _, err := session.Verify(ctx); err != nil {
				t.Fatalf("verify %d: %v", i, err)
			}
		}
		if _, err := session.Advance(ctx); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if session.Status() != domain.StatusCompleted || session.FinalScore() != "1 / 10" {
		t.Fatalf("expected completed 1 / 10, got %v %s", session.Status(), session.FinalScore())
	}
	stats, err := service.Stats(ctx, "alice")
	if err != nil || stats.CorrectResponses != 1 || stats.QuizzesPlayed != 1 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
}

func TestProfileOperations(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if err := service.ApplyInventory(ctx, "alice", domain.InventoryDelta{Rarity: domain.RarityEpic, Delta: -1}); !errors.Is(err, domain.ErrInsufficientCheatSheets) {
		t.Fatalf("expected insufficient, got %v", err)
	}
	if err := service.ApplyStats(ctx, "alice", domain.StatsDelta{QuizzesPlayed: 1}); err != nil {
		t.Fatalf("apply stats: %v", err)
	}
	stats, err := service.Stats(ctx, "alice")
	if err != nil || stats.QuizzesPlayed != 1 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
	if _, err := service.Inventory(ctx, ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestAssistReplyWithoutAssistant(t *testing.T) {
	service, _ := newTestService()
	if _, err := service.AssistReply(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error without assistant")
	}
}

func newTestService() (*app.QuizService, *memory.StaticBankLoader) {
	trivia := memory.NewStaticTrivia(map[string][]domain.StoredQuestion{
		"Books": triviaQuestions(app.DefaultQuizSize),
	})
	banks := memory.NewStaticBankLoader()
	service := app.NewQuizService(
		memory.NewSessionStore(),
		trivia,
		memory.NewBankRepository(banks, 5*time.Minute),
		memory.NewProfileStore(),
		nil,
		app.Options{},
	)
	return service, banks
}

func triviaQuestions(n int) []domain.StoredQuestion {
	out := make([]domain.StoredQuestion, n)
	for i := range out {
		right := fmt.Sprintf("right-%d", i)
		out[i] = domain.StoredQuestion{
			Text:    fmt.Sprintf("Question %d?", i+1),
			Choices: []string{right, fmt.Sprintf("wrong-%d", i), fmt.Sprintf("other-%d", i), fmt.Sprintf("nope-%d", i)},
			Correct: right,
		}
	}
	return out
}

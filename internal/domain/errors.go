package domain

import "errors"

var (
	// ErrSessionNotFound is returned when the authority has no record for an id.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionFinished is returned when acting on a completed record.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrCategoryNotFound indicates no question bank exists for a category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrNotEnoughQuestions indicates a bank smaller than one quiz.
	ErrNotEnoughQuestions = errors.New("not enough questions in category")
	// ErrUnknownChoice indicates a selection that is not a candidate.
	ErrUnknownChoice = errors.New("choice is not a candidate for this question")
	// ErrInsufficientCheatSheets indicates an inventory change would go negative.
	ErrInsufficientCheatSheets = errors.New("insufficient cheat sheets")
	// ErrRateLimited indicates the assistant refused for rate limiting.
	ErrRateLimited = errors.New("assistant rate limited")
	// ErrInvalidRequest indicates a malformed remote request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrResolutionFailed wraps any failure to obtain a session.
	ErrResolutionFailed = errors.New("quiz resolution failed")
	// ErrNotInProgress is returned for play operations outside InProgress.
	ErrNotInProgress = errors.New("quiz session is not in progress")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("quiz session already started")
	// ErrNoSelection is returned by Verify without a selection.
	ErrNoSelection = errors.New("no choice selected")
	// ErrAlreadyVerified is returned when the active question is frozen.
	ErrAlreadyVerified = errors.New("question already verified")
	// ErrNotVerified is returned by Advance before verification.
	ErrNotVerified = errors.New("question not verified")
	// ErrChoiceEliminated is returned when selecting a revealed distractor.
	ErrChoiceEliminated = errors.New("choice eliminated by hint")
	// ErrCallInFlight is returned while the same kind of call is outstanding.
	ErrCallInFlight = errors.New("request already in flight")
	// ErrStaleResponse is returned when a response arrives for a question the session has moved past.
	ErrStaleResponse = errors.New("response no longer matches session state")
	// ErrHintAlreadyUsed is returned for a second hint on one question.
	ErrHintAlreadyUsed = errors.New("hint already used for this question")
	// ErrNoCheatSheets is returned when the chosen tier is empty.
	ErrNoCheatSheets = errors.New("no cheat sheets left for this rarity")
	// ErrChannelLocked is returned when the assist channel is not unlocked.
	ErrChannelLocked = errors.New("assist channel locked")
	// ErrEmptyPrompt is returned for a blank assist prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// Error codes carried by AuthorityError on the wire.
const (
	CodeNotFound     = "not_found"
	CodeFinished     = "finished"
	CodeInsufficient = "insufficient"
	CodeRateLimited  = "rate_limited"
	CodeInvalid      = "invalid"
	CodeInternal     = "internal"
)

// AuthorityError is a failure reported by the remote authority.
// Message is meant to be shown to the player verbatim.
type AuthorityError struct {
	Code    string
	Message string
}

func (e *AuthorityError) Error() string {
	return e.Message
}

// Unwrap maps the wire code back to a sentinel so errors.Is works client-side.
func (e *AuthorityError) Unwrap() error {
	switch e.Code {
	case CodeNotFound:
		return ErrSessionNotFound
	case CodeFinished:
		return ErrSessionFinished
	case CodeInsufficient:
		return ErrInsufficientCheatSheets
	case CodeRateLimited:
		return ErrRateLimited
	case CodeInvalid:
		return ErrInvalidRequest
	}
	return nil
}

// CodeFor classifies err for the wire.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrCategoryNotFound):
		return CodeNotFound
	case errors.Is(err, ErrSessionFinished):
		return CodeFinished
	case errors.Is(err, ErrInsufficientCheatSheets):
		return CodeInsufficient
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnknownChoice), errors.Is(err, ErrNotEnoughQuestions):
		return CodeInvalid
	}
	return CodeInternal
}

package domain

import "time"

// Status is the lifecycle of one quiz attempt.
type Status int

const (
	StatusLoading Status = iota
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Phase is the sub-state of the active question.
type Phase int

const (
	PhaseUnanswered Phase = iota
	PhaseSelected
	PhaseVerified
)

func (p Phase) String() string {
	switch p {
	case PhaseUnanswered:
		return "unanswered"
	case PhaseSelected:
		return "selected"
	case PhaseVerified:
		return "verified"
	}
	return "unknown"
}

// Category references a question source by name.
// Catalog is true when the name belongs to the predefined trivia catalog.
type Category struct {
	Name    string `json:"name"`
	Catalog bool   `json:"catalog"`
}

// Question is what a player sees. It never carries the correct response.
type Question struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// HasChoice reports whether c is one of the question's candidates.
func (q Question) HasChoice(c string) bool {
	for _, choice := range q.Choices {
		if choice == c {
			return true
		}
	}
	return false
}

// StoredQuestion is the authority-side question including its answer.
type StoredQuestion struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
	Correct string   `json:"correct"`
}

// Public strips the correct response.
func (q StoredQuestion) Public() Question {
	choices := make([]string, len(q.Choices))
	copy(choices, q.Choices)
	return Question{Text: q.Text, Choices: choices}
}

// QuizRecord is the resolved session handed to the engine.
type QuizRecord struct {
	SessionID    string     `json:"sessionId"`
	Category     string     `json:"category"`
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`
	Score        int        `json:"score"` // correct answers banked before CurrentIndex
	Resumed      bool       `json:"resumed"`
}

// SessionRecord is the authority's persisted copy of a quiz attempt.
type SessionRecord struct {
	ID           string           `json:"id"`
	Player       string           `json:"player"`
	Category     string           `json:"category"`
	Questions    []StoredQuestion `json:"questions"`
	CurrentIndex int              `json:"currentIndex"`
	Mark         int              `json:"mark"`
	Finished     bool             `json:"finished"`
	// Last is the most recent verdict, replayed when its verification is repeated.
	Last         *Verdict         `json:"last,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// QuizRecord projects the stored record for the player.
func (r SessionRecord) QuizRecord(resumed bool) QuizRecord {
	questions := make([]Question, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = q.Public()
	}
	return QuizRecord{
		SessionID:    r.ID,
		Category:     r.Category,
		Questions:    questions,
		CurrentIndex: r.CurrentIndex,
		Score:        r.Mark,
		Resumed:      resumed,
	}
}

// Verdict is the authority's answer to a verification.
type Verdict struct {
	Correct  string `json:"correct"`
	Index    int    `json:"index"`
	Finished bool   `json:"finished"`
}

// Rarity is a cheat-sheet tier; higher is more desirable.
type Rarity int

// Default rarity tiers handed out by the gacha.
const (
	RarityCommon Rarity = 3
	RarityRare   Rarity = 4
	RarityEpic   Rarity = 5
)

// DefaultRarities lists the tiers a new profile starts with, ascending.
var DefaultRarities = []Rarity{RarityCommon, RarityRare, RarityEpic}

// Inventory maps each tier to its remaining quantity.
type Inventory map[Rarity]int

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for r, q := range inv {
		out[r] = q
	}
	return out
}

// InventoryDelta adjusts one tier's quantity.
type InventoryDelta struct {
	Rarity Rarity `json:"rarity"`
	Delta  int    `json:"delta"`
}

// Stats are the cumulative per-player counters.
type Stats struct {
	QuizzesPlayed    int `json:"quizzesPlayed"`
	CorrectResponses int `json:"correctResponses"`
	PerfectMarks     int `json:"perfectMarks"`
	CheatSheetsUsed  int `json:"cheatSheetsUsed"`
}

// StatsDelta is merged into Stats field by field.
type StatsDelta Stats

// Apply returns s with d added.
func (s Stats) Apply(d StatsDelta) Stats {
	s.QuizzesPlayed += d.QuizzesPlayed
	s.CorrectResponses += d.CorrectResponses
	s.PerfectMarks += d.PerfectMarks
	s.CheatSheetsUsed += d.CheatSheetsUsed
	return s
}

// Profile is the authority-side view of a player.
type Profile struct {
	Player    string    `json:"player"`
	Inventory Inventory `json:"inventory"`
	Stats     Stats     `json:"stats"`
}

// Sender identifies who wrote an assist transcript turn.
type Sender string

const (
	SenderPlayer    Sender = "player"
	SenderAssistant Sender = "assistant"
)

// Turn is one line of the assist transcript.
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

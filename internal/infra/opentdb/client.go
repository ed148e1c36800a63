package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quizmaster/internal/domain"
)

// DefaultBaseURL is the public Open Trivia Database endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

// CategoryIDs maps catalog names to Open Trivia Database category ids.
var CategoryIDs = map[string]int{
	"General Knowledge":      9,
	"Books":                  10,
	"Film":                   11,
	"Music":                  12,
	"Musicals & Theatres":    13,
	"Television":             14,
	"Video Games":            15,
	"Board Games":            16,
	"Science & Nature":       17,
	"Computers":              18,
	"Mathematics":            19,
	"Mythology":              20,
	"Sports":                 21,
	"History":                23,
	"Politics":               24,
	"Art":                    25,
	"Celebrities":            26,
	"Animals":                27,
	"Vehicles":               28,
	"Comics":                 29,
	"Gadgets":                30,
	"Japanese Anime & Manga": 31,
	"Cartoon & Animations":   32,
}

// CheckCatalog reports catalog names that have no Open Trivia Database id.
func CheckCatalog(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := CategoryIDs[name]; !ok {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("catalog categories without a trivia id: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Response codes documented by the API.
const (
	codeSuccess   = 0
	codeNoResults = 1
	codeRateLimit = 5
)

// Client fetches multiple-choice questions from the Open Trivia Database.
type Client struct {
	baseURL    string
	difficulty string
	http       *http.Client
}

func NewClient(baseURL, difficulty string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if difficulty == "" {
		difficulty = "easy"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, difficulty: difficulty, http: &http.Client{Timeout: timeout}}
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// FetchQuestions implements app.TriviaSource.
func (c *Client) FetchQuestions(ctx context.Context, category string, amount int) ([]domain.StoredQuestion, error) {
	id, ok := CategoryIDs[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a trivia category", domain.ErrCategoryNotFound, category)
	}

	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	q.Set("category", strconv.Itoa(id))
	q.Set("difficulty", c.difficulty)
	q.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trivia: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fetch trivia: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch trivia: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia: %w", err)
	}
	switch body.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, domain.ErrNotEnoughQuestions
	case codeRateLimit:
		return nil, fmt.Errorf("fetch trivia: %w", domain.ErrRateLimited)
	default:
		return nil, fmt.Errorf("fetch trivia: response code %d", body.ResponseCode)
	}

	out := make([]domain.StoredQuestion, 0, len(body.Results))
	for _, r := range body.Results {
		correct := html.UnescapeString(r.CorrectAnswer)
		choices := make([]string, 0, len(r.IncorrectAnswers)+1)
		choices = append(choices, correct)
		for _, a := range r.IncorrectAnswers {
			choices = append(choices, html.UnescapeString(a))
		}
		rand.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
		out = append(out, domain.StoredQuestion{
			Text:    html.UnescapeString(r.Question),
			Choices: choices,
			Correct: correct,
		})
	}
	return out, nil
}

package http

import (
	"encoding/json"

	"quizmaster/internal/domain"
)

// Request operations.
const (
	opResolveQuiz    = "resolveQuiz"
	opCreateQuiz     = "createQuiz"
	opVerifyAnswer   = "verifyAnswer"
	opRevealHint     = "revealHint"
	opAssistReply    = "assistReply"
	opInventory      = "inventory"
	opApplyInventory = "applyInventory"
	opApplyStats     = "applyStats"
	opStats          = "stats"
)

// Response types.
const (
	typeResult = "result"
	typeError  = "error"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	ID      uint64 `json:"id"`
	Payload T      `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type categoryPayload struct {
	Player   string `json:"player"`
	Category string `json:"category"`
}

type verifyPayload struct {
	Player    string `json:"player"`
	SessionID string `json:"sessionId"`
	Index     int    `json:"index"`
	Selection string `json:"selection"`
}

type hintPayload struct {
	Player    string        `json:"player"`
	SessionID string        `json:"sessionId"`
	Index     int           `json:"index"`
	Rarity    domain.Rarity `json:"rarity"`
}

type hintResult struct {
	Eliminated []string `json:"eliminated"`
}

type assistPayload struct {
	Prompt string `json:"prompt"`
}

type assistResult struct {
	Reply string `json:"reply"`
}

type playerPayload struct {
	Player string `json:"player"`
}

type inventoryDeltaPayload struct {
	Player string                `json:"player"`
	Delta  domain.InventoryDelta `json:"delta"`
}

type statsDeltaPayload struct {
	Player string            `json:"player"`
	Delta  domain.StatsDelta `json:"delta"`
}

type empty struct{}

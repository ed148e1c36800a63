package llm

import "context"

// Provider sends a conversation to a language model and returns its text reply.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model output.
type Response struct {
	Text  string
	Model string
}

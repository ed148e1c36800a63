package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider against any OpenAI-compatible chat
// completions API. With several API keys it tries them in order until one
// succeeds.
type OpenAIProvider struct {
	clients []*openai.Client
	model   string
}

// OpenAIConfig holds OpenAI-compatible provider configuration.
type OpenAIConfig struct {
	APIKeys []string
	Model   string
	BaseURL string // Optional. Override for AIMLAPI or other compatible APIs.
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	var clients []*openai.Client
	for _, key := range cfg.APIKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		config := openai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			config.BaseURL = cfg.BaseURL
		}
		clients = append(clients, openai.NewClientWithConfig(config))
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("openai API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIProvider{clients: clients, model: model}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  buildOpenAIMessages(req),
		MaxTokens: req.MaxTokens,
	}

	var lastErr error
	for i, client := range p.clients {
		resp, err := client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = mapOpenAIError(err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("llm key %d of %d failed: %v", i+1, len(p.clients), err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = &ErrProviderUnavailable{Err: fmt.Errorf("no choices in OpenAI response")}
			continue
		}
		return &Response{Text: resp.Choices[0].Message.Content, Model: resp.Model}, nil
	}
	return nil, lastErr
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return messages
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

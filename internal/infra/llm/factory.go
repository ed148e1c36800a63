package llm

import "fmt"

// Config selects and configures a provider.
type Config struct {
	// Provider is one of "openai", "anthropic" or "mock".
	Provider string
	APIKeys  []string
	Model    string
	BaseURL  string
}

// NewProvider creates a Provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "openai", "":
		p, err = NewOpenAIProvider(OpenAIConfig{APIKeys: cfg.APIKeys, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "anthropic":
		key := ""
		if len(cfg.APIKeys) > 0 {
			key = cfg.APIKeys[0]
		}
		p, err = NewAnthropicProvider(AnthropicConfig{APIKey: key, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

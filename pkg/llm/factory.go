package llm

import (
	"context"
	"fmt"
	"time"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewProvider builds the provider named by s.Provider.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case "", "ollama":
		return NewOllamaProvider(s.BaseURL, s.Timeout), nil
	case "openai":
		return NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model)
	case "deepseek":
		// OpenAI-compatible; the gateway address is mandatory.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model)
	case "gemini":
		return NewGeminiProvider(ctx, s.APIKey, s.BaseURL, s.Model)
	case "anthropic":
		return NewAnthropicProvider(s.APIKey, s.BaseURL, s.Model, s.Timeout)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}

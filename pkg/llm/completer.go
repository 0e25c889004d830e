package llm

import (
	"context"
)

// Completer is the one capability the drafting loop needs: send a system
// instruction and user content, get text back verbatim.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// providerCompleter binds a Provider to a model and temperature.
type providerCompleter struct {
	provider    Provider
	model       string
	temperature float64
}

// NewCompleter adapts a Provider to Completer.
func NewCompleter(provider Provider, model string, temperature float64) Completer {
	return &providerCompleter{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// Complete sends one system + user exchange and returns the content unmodified.
func (c *providerCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.provider.Complete(ctx, &CompletionRequest{
		Model:       c.model,
		System:      system,
		Messages:    []Message{UserMessage(user)},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for text generation.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
	// JSONOnly asks the provider to constrain output to a JSON object.
	JSONOnly bool
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	_ = ctx
	_ = prompt
	_ = opts
	return "", ErrNotConfigured
}

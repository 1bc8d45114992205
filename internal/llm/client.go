// Package llm provides the generate-text capability used by the gap-filler
// and the result ranker. It supports Gemini and OpenAI-compatible backends
// plus a mock for deterministic tests. The capability is opaque and
// non-deterministic: callers must validate everything it returns.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Client is the generate-text capability. Generate may fail or time out;
// callers degrade to their no-contribution paths rather than propagate.
type Client interface {
	// Generate returns the model's text completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available returns true if the client is configured and ready.
	// For API-based clients this checks that credentials are present.
	Available() bool
}

// Closer is an optional interface for clients holding resources that need
// cleanup. Consumers type-assert: if c, ok := client.(Closer); ok { c.Close() }.
type Closer interface {
	Close() error
}

// ClientConfig configures a generate-text client.
type ClientConfig struct {
	// Provider identifies the backend: "gemini", "openai", or "" for disabled.
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint. Used for OpenAI-compatible
	// endpoints; defaults to the provider's public API.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the model identifier to use for requests.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Timeout is the maximum duration to wait for a response.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig returns a ClientConfig with sensible defaults.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		Provider: "",
		Model:    defaultGeminiModel,
		Timeout:  15 * time.Second,
	}
}

// NewClient creates the client for config.Provider. An empty provider
// yields a permanently unavailable client, which disables the gap-filler
// and ranker without special-casing at call sites.
func NewClient(config ClientConfig) (Client, error) {
	switch config.Provider {
	case "":
		return disabledClient{}, nil
	case "gemini":
		return NewGeminiClient(config), nil
	case "openai":
		return NewOpenAIClient(config), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
}

// disabledClient is returned when no provider is configured.
type disabledClient struct{}

func (disabledClient) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("llm disabled: no provider configured")
}

func (disabledClient) Available() bool { return false }

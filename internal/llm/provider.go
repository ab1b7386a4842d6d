package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for generative LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate runs a single-turn completion
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest is a single-turn prompt
type GenerateRequest struct {
	// System is the system instruction (optional)
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model (optional)
	Model string

	// MaxTokens limits the response length (0 = provider config)
	MaxTokens int
}

// GenerateResponse is the provider's answer
type GenerateResponse struct {
	// Text is the raw completion text, trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 20,
	}
}

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from provider")

// StatusError is returned when a remote API answers with a non-2xx status
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error (%d)", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Code, e.Message)
}

// resolveModel picks the request model, then the configured one, then the fallback
func resolveModel(req GenerateRequest, config Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return fallback
}

// resolveMaxTokens picks the request limit, then the configured one, then the fallback
func resolveMaxTokens(req GenerateRequest, config Config, fallback int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return fallback
}

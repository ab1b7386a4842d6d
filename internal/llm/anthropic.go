package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/ppiankov/debatelens/internal/util"
)

const defaultAnthropicModel = "claude-3-5-haiku-20241022"

// AnthropicProvider implements the Provider interface for Anthropic Claude models
type AnthropicProvider struct {
	client *anthropic.Client
	config Config
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		}),
	}
	if config.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(config.APIKey, opts...),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable checks if the provider is properly configured
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Generate(ctx, GenerateRequest{Prompt: "Hi", MaxTokens: 5})
	return err == nil
}

// Generate runs a Messages API completion
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := resolveModel(req, p.config, defaultAnthropicModel)
	maxTokens := resolveMaxTokens(req, p.config, 20)

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(model),
		System: req.System,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Prompt)},
			},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Provider: "anthropic", Code: statusFromAnthropicType(apiErr.Type), Message: apiErr.Message}
		}
		var reqErr *anthropic.RequestError
		if errors.As(err, &reqErr) {
			return nil, &StatusError{Provider: "anthropic", Code: reqErr.StatusCode, Message: reqErr.Error()}
		}
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, content := range resp.Content {
		if content.Text != nil {
			text.WriteString(*content.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      string(resp.Model),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// statusFromAnthropicType maps Anthropic error types to HTTP status codes
func statusFromAnthropicType(errType anthropic.ErrType) int {
	switch errType {
	case anthropic.ErrTypeInvalidRequest:
		return http.StatusBadRequest
	case anthropic.ErrTypeAuthentication:
		return http.StatusUnauthorized
	case anthropic.ErrTypePermission:
		return http.StatusForbidden
	case anthropic.ErrTypeNotFound:
		return http.StatusNotFound
	case anthropic.ErrTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case anthropic.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case anthropic.ErrTypeOverloaded:
		return 529
	default:
		return http.StatusInternalServerError
	}
}

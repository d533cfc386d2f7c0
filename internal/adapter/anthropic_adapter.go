// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	// DefaultAnthropicEndpoint is the default hosted-model API endpoint.
	DefaultAnthropicEndpoint = "https://api.anthropic.com"

	// DefaultAnthropicModel is the default hosted model.
	DefaultAnthropicModel = "claude-3-haiku-20240307"

	// DefaultAnthropicVersion is the API version header value.
	DefaultAnthropicVersion = "2023-06-01"
)

// AnthropicAdapter implements ChatProvider for the hosted-model messages API.
// The system instruction is sent as a top-level field, so system turns never
// appear in the message list.
type AnthropicAdapter struct {
	cfg        domain.ProviderConfig
	client     anthropic.Client
	timeout    time.Duration
	logger     *slog.Logger
	normalizer Normalizer
}

// NewAnthropicAdapter creates a new AnthropicAdapter.
// It fails when the configuration carries no API key.
func NewAnthropicAdapter(cfg domain.ProviderConfig, opts ...Option) (*AnthropicAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("anthropic adapter: %w", err)
	}
	s := newSettings(opts)

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAnthropicVersion
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL()+"/"),
		option.WithHTTPClient(s.httpClient),
		option.WithHeader("anthropic-version", version),
		// The orchestrator performs exactly one upstream call per request.
		option.WithMaxRetries(0),
	)

	a := &AnthropicAdapter{
		cfg:     cfg,
		client:  client,
		timeout: s.timeout,
		logger:  s.logger.With(slog.String("provider", "anthropic")),
	}
	a.normalizer = NewNormalizer(a.Name(), cfg.ModelID, cfg.APIKey, s.logger)

	a.logger.Info("initialized hosted-model adapter",
		slog.String("model", cfg.ModelID),
		slog.String("api_version", version),
	)
	return a, nil
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return string(domain.ProviderAnthropic)
}

// Model returns the configured model.
func (a *AnthropicAdapter) Model() string {
	return a.cfg.ModelID
}

// AcceptedRoles returns user and assistant only.
func (a *AnthropicAdapter) AcceptedRoles() domain.RoleSet {
	return chatRoles
}

// Defaults returns generation defaults for mode.
func (a *AnthropicAdapter) Defaults(mode domain.Mode) Generation {
	if mode == domain.ModeSpecialist {
		return Generation{MaxTokens: 1500, Temperature: 0.5}
	}
	return Generation{MaxTokens: 1024, Temperature: 0.7}
}

// Send performs one POST /v1/messages call and normalizes the outcome.
func (a *AnthropicAdapter) Send(ctx context.Context, req domain.ProviderRequest) domain.Result {
	text, err := a.complete(ctx, req)
	return a.normalizer.Normalize(text, err)
}

func (a *AnthropicAdapter) complete(ctx context.Context, req domain.ProviderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid provider request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := buildMessageParams(req)

	start := time.Now()
	message, err := a.client.Messages.New(ctx, params, option.WithJSONSet("stream", false))
	if err != nil {
		return "", a.classify(ctx, err)
	}

	a.logger.Debug("messages call finished",
		slog.String("model", string(message.Model)),
		slog.String("stop_reason", string(message.StopReason)),
		slog.Duration("latency", time.Since(start)),
		slog.Int("messages", len(req.Messages)),
	)

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &ProviderError{Provider: a.Name(), Kind: domain.KindMalformed, Err: ErrEmptyCompletion}
	}
	return text.String(), nil
}

// classify maps SDK errors onto the error taxonomy.
func (a *AnthropicAdapter) classify(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(a.Name(), apiErr.StatusCode, apiErr.RawJSON(), err)
	}
	return classifyTransport(ctx, a.Name(), err)
}

// buildMessageParams converts a ProviderRequest to SDK parameters.
func buildMessageParams(req domain.ProviderRequest) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, t := range req.Messages {
		switch t.Role {
		case domain.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case domain.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: req.SystemPrompt,
			},
		}
	}
	return params
}

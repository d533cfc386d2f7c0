// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	// DefaultCompletionsEndpoint is the default completions API endpoint.
	DefaultCompletionsEndpoint = "https://api.together.xyz"

	// DefaultCompletionsModel is the default completions model.
	DefaultCompletionsModel = "deepseek-ai/DeepSeek-R1-Distill-Llama-70B-free"

	userLabel      = "User:"
	assistantLabel = "AI:"
)

// CompletionsAdapter implements ChatProvider for a prompt-completions API.
// The conversation is rendered into one prompt string and the reply is read from choices[0].text.
type CompletionsAdapter struct {
	cfg        domain.ProviderConfig
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	normalizer Normalizer
}

// NewCompletionsAdapter creates a new CompletionsAdapter.
// It fails when the configuration carries no API key.
func NewCompletionsAdapter(cfg domain.ProviderConfig, opts ...Option) (*CompletionsAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("together adapter: %w", err)
	}
	s := newSettings(opts)
	a := &CompletionsAdapter{
		cfg:        cfg,
		httpClient: s.httpClient,
		timeout:    s.timeout,
		logger:     s.logger.With(slog.String("provider", "together")),
	}
	a.normalizer = NewNormalizer(a.Name(), cfg.ModelID, cfg.APIKey, s.logger)
	return a, nil
}

// Name returns the provider identifier.
func (a *CompletionsAdapter) Name() string {
	return string(domain.ProviderTogether)
}

// Model returns the configured model.
func (a *CompletionsAdapter) Model() string {
	return a.cfg.ModelID
}

// AcceptedRoles returns user and assistant; the instruction is prepended to the prompt.
func (a *CompletionsAdapter) AcceptedRoles() domain.RoleSet {
	return chatRoles
}

// Defaults returns generation defaults for mode.
func (a *CompletionsAdapter) Defaults(mode domain.Mode) Generation {
	if mode == domain.ModeSpecialist {
		return Generation{MaxTokens: 300, Temperature: 0.5}
	}
	return Generation{MaxTokens: 100, Temperature: 0.7}
}

// Send renders the prompt, performs one POST /v1/completions call and normalizes the outcome.
func (a *CompletionsAdapter) Send(ctx context.Context, req domain.ProviderRequest) domain.Result {
	text, err := a.complete(ctx, req)
	return a.normalizer.Normalize(text, err)
}

func (a *CompletionsAdapter) complete(ctx context.Context, req domain.ProviderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid provider request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// Marshal the request body
	body, err := json.Marshal(a.buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := a.cfg.BaseURL() + "/v1/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	start := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(ctx, a.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(ctx, a.Name(), fmt.Errorf("failed to read completion response: %w", err))
	}

	a.logger.Debug("completion call finished",
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
		slog.Int("messages", len(req.Messages)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := string(respBody)
		var apiErr CompletionErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.detail() != "" {
			detail = apiErr.detail()
		}
		return "", classifyStatus(a.Name(), resp.StatusCode, detail, nil)
	}

	var completion CompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", &ProviderError{
			Provider: a.Name(),
			Kind:     domain.KindMalformed,
			Err:      fmt.Errorf("failed to unmarshal completion response: %w", err),
		}
	}
	if len(completion.Choices) == 0 {
		return "", &ProviderError{Provider: a.Name(), Kind: domain.KindMalformed, Err: ErrEmptyCompletion}
	}

	return completion.Choices[0].Text, nil
}

// buildRequest converts a ProviderRequest to the completions wire format.
func (a *CompletionsAdapter) buildRequest(req domain.ProviderRequest) CompletionRequest {
	return CompletionRequest{
		Model:       req.Model,
		Prompt:      renderPrompt(req.SystemPrompt, req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        []string{userLabel, assistantLabel},
	}
}

// renderPrompt flattens the instruction and the turns into a transcript that
// ends with an open assistant label for the model to complete.
func renderPrompt(system string, turns domain.Conversation) string {
	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			b.WriteString(userLabel)
		case domain.RoleAssistant:
			b.WriteString(assistantLabel)
		default:
			continue
		}
		b.WriteString(" ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString(assistantLabel)
	return b.String()
}

// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	// DefaultHubEndpoint is the OpenAI-compatible inference hub router.
	DefaultHubEndpoint = "https://router.huggingface.co/v1"

	// DefaultHubModel is the default hub model.
	DefaultHubModel = "deepseek-ai/DeepSeek-V3-0324"

	// DefaultHubInferenceProvider is the default backend the hub routes to.
	DefaultHubInferenceProvider = "novita"
)

// HubAdapter implements ChatProvider for the inference-hub chat completion API.
// The system instruction is sent as the single leading system message.
type HubAdapter struct {
	cfg          domain.ProviderConfig
	client       *openai.Client
	model        string
	timeout      time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
	normalizer   Normalizer
	probe        atomic.Pointer[CapabilityProbe]
}

// NewHubAdapter creates a new HubAdapter.
// It fails when the configuration carries no API key.
func NewHubAdapter(cfg domain.ProviderConfig, opts ...Option) (*HubAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("huggingface adapter: %w", err)
	}
	s := newSettings(opts)

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL()
	clientCfg.HTTPClient = s.httpClient

	h := &HubAdapter{
		cfg:          cfg,
		client:       openai.NewClientWithConfig(clientCfg),
		model:        routedModel(cfg.ModelID, cfg.InferenceProvider),
		timeout:      s.timeout,
		probeTimeout: s.probeTimeout,
		logger:       s.logger.With(slog.String("provider", "huggingface")),
	}
	h.normalizer = NewNormalizer(h.Name(), h.model, cfg.APIKey, s.logger)

	h.logger.Info("initialized inference hub adapter", slog.String("model", h.model))
	return h, nil
}

// routedModel appends the inference provider suffix understood by the hub router.
func routedModel(model, provider string) string {
	if provider == "" || strings.Contains(model, ":") {
		return model
	}
	return model + ":" + provider
}

// Name returns the provider identifier.
func (h *HubAdapter) Name() string {
	return string(domain.ProviderHuggingFace)
}

// Model returns the routed model identifier.
func (h *HubAdapter) Model() string {
	return h.model
}

// AcceptedRoles returns user and assistant; the adapter adds the one system message itself.
func (h *HubAdapter) AcceptedRoles() domain.RoleSet {
	return chatRoles
}

// Defaults returns generation defaults for mode.
func (h *HubAdapter) Defaults(mode domain.Mode) Generation {
	if mode == domain.ModeSpecialist {
		return Generation{MaxTokens: 500, Temperature: 0.5}
	}
	return Generation{MaxTokens: 500, Temperature: 0.7}
}

// Send performs one chat completion call and normalizes the outcome.
func (h *HubAdapter) Send(ctx context.Context, req domain.ProviderRequest) domain.Result {
	text, err := h.complete(ctx, req, h.timeout)
	return h.normalizer.Normalize(text, err)
}

func (h *HubAdapter) complete(ctx context.Context, req domain.ProviderRequest, timeout time.Duration) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid provider request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.client.CreateChatCompletion(ctx, buildChatCompletionRequest(req))
	if err != nil {
		return "", h.classify(ctx, err)
	}

	h.logger.Debug("chat completion call finished",
		slog.String("model", resp.Model),
		slog.Duration("latency", time.Since(start)),
		slog.Int("messages", len(req.Messages)),
	)

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Provider: h.Name(), Kind: domain.KindMalformed, Err: ErrEmptyCompletion}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto the error taxonomy.
func (h *HubAdapter) classify(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		body := apiErr.Message
		if apiErr.Code != nil {
			body = fmt.Sprintf("%v: %s", apiErr.Code, body)
		}
		return classifyStatus(h.Name(), apiErr.HTTPStatusCode, body, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return classifyStatus(h.Name(), reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err), err)
	}
	return classifyTransport(ctx, h.Name(), err)
}

// buildChatCompletionRequest converts a ProviderRequest to the chat completion wire format.
func buildChatCompletionRequest(req domain.ProviderRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, t := range req.Messages {
		var role string
		switch t.Role {
		case domain.RoleUser:
			role = openai.ChatMessageRoleUser
		case domain.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stream:      false,
	}
}

// StartCapabilityProbe launches one background check that the configured model
// answers a minimal chat call. The chat path never waits on it.
func (h *HubAdapter) StartCapabilityProbe(ctx context.Context) *CapabilityProbe {
	p := StartProbe(ctx, h.Name(), h.probeTimeout, h.logger, func(ctx context.Context) error {
		_, err := h.complete(ctx, domain.ProviderRequest{
			Model:       h.model,
			Messages:    domain.Conversation{{Role: domain.RoleUser, Content: "ping"}},
			MaxTokens:   1,
			Temperature: 0,
		}, h.probeTimeout)
		if errors.Is(err, ErrEmptyCompletion) {
			// A one-token reply may legitimately be blank.
			return nil
		}
		if err != nil {
			return errors.New(h.normalizer.scrub(err.Error()))
		}
		return nil
	})
	h.probe.Store(p)
	return p
}

// CapabilityStatus reports the cached probe outcome.
func (h *HubAdapter) CapabilityStatus() ProbeStatus {
	p := h.probe.Load()
	if p == nil {
		return ProbeStatus{State: ProbeDisabled}
	}
	return p.Status()
}

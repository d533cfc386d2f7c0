// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to abstract provider-specific APIs behind a common interface.
package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	// DefaultChatTimeout bounds user-facing chat calls.
	DefaultChatTimeout = 30 * time.Second

	// DefaultProbeTimeout bounds capability probe calls.
	DefaultProbeTimeout = 10 * time.Second
)

// Generation holds the per-call sampling defaults of an adapter.
type Generation struct {
	MaxTokens   int
	Temperature float64
}

// ChatProvider is the capability every upstream adapter implements.
// Send never returns a Go error: every failure is folded into the Result.
type ChatProvider interface {
	// Name returns the provider's identifier string.
	Name() string

	// Model returns the model identifier sent upstream.
	Model() string

	// AcceptedRoles is the role vocabulary allowed inside the message list.
	AcceptedRoles() domain.RoleSet

	// Defaults returns token and temperature defaults for mode.
	Defaults(mode domain.Mode) Generation

	// Send performs exactly one upstream call and normalizes its outcome.
	Send(ctx context.Context, req domain.ProviderRequest) domain.Result
}

// chatRoles is accepted by every adapter: system instructions travel separately.
var chatRoles = domain.NewRoleSet(domain.RoleUser, domain.RoleAssistant)

// settings collects the options shared by all adapters.
type settings struct {
	httpClient   *http.Client
	timeout      time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
}

// Option is a functional option for configuring an adapter.
type Option func(*settings)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout sets the deadline of chat calls.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithProbeTimeout sets the deadline of capability probe calls.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.probeTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		httpClient:   &http.Client{},
		timeout:      DefaultChatTimeout,
		probeTimeout: DefaultProbeTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New builds the adapter for the given provider type.
func New(provider domain.ProviderType, cfg domain.ProviderConfig, opts ...Option) (ChatProvider, error) {
	switch provider {
	case domain.ProviderAnthropic:
		return NewAnthropicAdapter(cfg, opts...)
	case domain.ProviderHuggingFace:
		return NewHubAdapter(cfg, opts...)
	case domain.ProviderTogether:
		return NewCompletionsAdapter(cfg, opts...)
	default:
		return nil, &UnknownProviderError{Provider: string(provider)}
	}
}

// UnknownProviderError is returned by New for unsupported provider types.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return "unknown provider: " + e.Provider
}

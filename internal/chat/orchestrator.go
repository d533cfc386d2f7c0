// Package chat wires the history filter, the persona selector and one
// provider adapter into the single chat pipeline served to callers.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hpn/hpn-assist/internal/adapter"
	"github.com/hpn/hpn-assist/internal/domain"
	"github.com/hpn/hpn-assist/internal/prompt"
)

// Orchestrator dispatches every chat turn to one configured provider.
// It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	provider adapter.ChatProvider
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator for provider.
func NewOrchestrator(provider adapter.ChatProvider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		provider: provider,
		logger:   logger.With(slog.String("component", "chat")),
	}
}

// Provider returns the adapter calls are dispatched to.
func (o *Orchestrator) Provider() adapter.ChatProvider {
	return o.provider
}

// Handle appends message to history as the final user turn, filters the
// conversation for the provider, attaches the persona for mode and performs
// exactly one upstream call. The adapter's result is returned unchanged.
func (o *Orchestrator) Handle(ctx context.Context, history []domain.Turn, message string, mode domain.Mode) domain.Result {
	if strings.TrimSpace(message) == "" {
		return domain.Failure(domain.KindBadRequest, "Message must not be empty.")
	}

	req := o.BuildRequest(history, message, mode)
	if err := req.Validate(); err != nil {
		o.logger.Error("refusing to dispatch invalid request", slog.String("error", err.Error()))
		return domain.Failure(domain.KindUnexpected, "The chat request could not be built: "+err.Error())
	}

	start := time.Now()
	res := o.provider.Send(ctx, req)

	o.logger.Info("chat turn handled",
		slog.String("provider", o.provider.Name()),
		slog.String("mode", string(mode)),
		slog.Int("history", len(req.Messages)-1),
		slog.String("status", string(res.Status)),
		slog.Duration("latency", time.Since(start)),
	)
	return res
}

// BuildRequest assembles the ProviderRequest Handle sends.
func (o *Orchestrator) BuildRequest(history []domain.Turn, message string, mode domain.Mode) domain.ProviderRequest {
	turns := make([]domain.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: message})

	gen := o.provider.Defaults(mode)
	return domain.ProviderRequest{
		Model:        o.provider.Model(),
		Messages:     domain.FilterHistory(turns, o.provider.AcceptedRoles()),
		SystemPrompt: prompt.Select(mode),
		MaxTokens:    gen.MaxTokens,
		Temperature:  clamp(gen.Temperature, 0, 1),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// ProbeState is the cached outcome of a capability probe.
type ProbeState string

const (
	ProbeDisabled    ProbeState = "disabled"
	ProbePending     ProbeState = "pending"
	ProbeAvailable   ProbeState = "available"
	ProbeUnavailable ProbeState = "unavailable"
)

// ProbeStatus is a point-in-time view of a probe.
type ProbeStatus struct {
	State     ProbeState `json:"state"`
	Error     string     `json:"error,omitempty"`
	CheckedAt time.Time  `json:"checked_at,omitempty"`
}

// CapabilityProber is implemented by adapters that run a startup capability probe.
type CapabilityProber interface {
	CapabilityStatus() ProbeStatus
}

// CapabilityProbe runs one advisory check in the background.
// Its failure, including a panic, is only logged and cached.
type CapabilityProbe struct {
	mu     sync.RWMutex
	status ProbeStatus
	done   chan struct{}
}

// StartProbe spawns check in its own goroutine bounded by timeout and returns immediately.
func StartProbe(ctx context.Context, name string, timeout time.Duration, logger *slog.Logger, check func(ctx context.Context) error) *CapabilityProbe {
	p := &CapabilityProbe{
		status: ProbeStatus{State: ProbePending},
		done:   make(chan struct{}),
	}
	go p.run(ctx, name, timeout, logger, check)
	return p
}

func (p *CapabilityProbe) run(ctx context.Context, name string, timeout time.Duration, logger *slog.Logger, check func(ctx context.Context) error) {
	defer close(p.done)

	var err error
	var wg conc.WaitGroup
	wg.Go(func() {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err = check(probeCtx)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		err = recovered.AsError()
	}

	status := ProbeStatus{State: ProbeAvailable, CheckedAt: time.Now()}
	if err != nil {
		status.State = ProbeUnavailable
		status.Error = err.Error()
		logger.Warn("capability probe failed",
			slog.String("probe", name),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("capability probe succeeded", slog.String("probe", name))
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

// Status returns the cached probe outcome.
func (p *CapabilityProbe) Status() ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Done is closed once the probe has finished.
func (p *CapabilityProbe) Done() <-chan struct{} {
	return p.done
}

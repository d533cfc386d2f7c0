// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/hpn/hpn-assist/internal/domain"
)

// ErrEmptyCompletion is returned when a 2xx reply carries no generated text.
var ErrEmptyCompletion = errors.New("response carries no generated text")

// maxBodyInMessage caps how much of an upstream body is echoed to callers.
const maxBodyInMessage = 512

// ProviderError is a classified upstream failure.
type ProviderError struct {
	Provider   string           // The provider name
	Kind       domain.ErrorKind // Stable error category
	StatusCode int              // HTTP status code (0 for transport failures)
	Body       string           // Raw upstream body or detail, unredacted
	// ModelUnavailable marks a 400 caused by a model the account cannot use.
	ModelUnavailable bool
	Err              error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider '%s' %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider '%s' %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf returns the error category carried by err.
func KindOf(err error) domain.ErrorKind {
	if err == nil {
		return domain.KindNone
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	if errors.Is(err, ErrEmptyCompletion) {
		return domain.KindMalformed
	}
	return domain.KindUnexpected
}

// classifyStatus maps a non-2xx upstream status onto the error taxonomy.
func classifyStatus(provider string, status int, body string, cause error) *ProviderError {
	pe := &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Body:       strings.TrimSpace(body),
		Err:        cause,
	}
	switch {
	case status == http.StatusUnauthorized:
		pe.Kind = domain.KindAuthentication
	case status == http.StatusTooManyRequests:
		pe.Kind = domain.KindRateLimited
	case status == http.StatusBadRequest:
		pe.Kind = domain.KindBadRequest
		pe.ModelUnavailable = mentionsUnavailableModel(body)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		pe.Kind = domain.KindTimeout
	default:
		pe.Kind = domain.KindUpstream
	}
	return pe
}

// modelUnavailableMarkers are fragments providers put in a 400 body when the
// requested model exists but cannot be used with the configured account.
var modelUnavailableMarkers = []string{
	"model_not_supported",
	"model_not_found",
	"model not found",
	"not supported by provider",
	"is not supported",
	"does not exist",
	"not accessible",
	"do not have access",
	"does not have access",
}

func mentionsUnavailableModel(body string) bool {
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "model") {
		return false
	}
	for _, m := range modelUnavailableMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// classifyTransport maps a failure that produced no HTTP status.
func classifyTransport(ctx context.Context, provider string, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, Kind: domain.KindUnexpected, Err: err}
	if isTimeout(ctx, err) {
		pe.Kind = domain.KindTimeout
	}
	return pe
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

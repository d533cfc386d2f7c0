// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hpn/hpn-assist/internal/domain"
	"github.com/hpn/hpn-assist/internal/security"
)

// Normalizer turns a raw adapter outcome into the one Result shape callers see.
// It guarantees a non-empty message and never echoes the configured secret.
type Normalizer struct {
	provider string
	model    string
	secret   string
	logger   *slog.Logger
}

// NewNormalizer creates a Normalizer for one provider.
func NewNormalizer(provider, model, secret string, logger *slog.Logger) Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return Normalizer{provider: provider, model: model, secret: secret, logger: logger}
}

// Normalize converts the generated text or the failure into a Result.
// A nil error with blank text is a malformed response, never an empty success.
func (n Normalizer) Normalize(text string, err error) domain.Result {
	if err == nil {
		text = strings.TrimSpace(text)
		if text != "" {
			return domain.Success(text)
		}
		err = &ProviderError{Provider: n.provider, Kind: domain.KindMalformed, Err: ErrEmptyCompletion}
	}

	kind := KindOf(err)
	message := n.scrub(n.describe(kind, err))

	attrs := []any{
		slog.String("provider", n.provider),
		slog.String("kind", string(kind)),
		slog.String("error", n.scrub(err.Error())),
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode > 0 {
		attrs = append(attrs, slog.Int("status", pe.StatusCode))
	}
	n.logger.Warn("chat call failed", attrs...)

	return domain.Failure(kind, message)
}

func (n Normalizer) describe(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.KindTimeout:
		return "Request timed out. Please try again."
	case domain.KindAuthentication:
		return fmt.Sprintf("Authentication with the %s API failed. Verify the configured API key.", n.provider)
	case domain.KindRateLimited:
		return fmt.Sprintf("The %s API rate limit was reached. Please retry later.", n.provider)
	case domain.KindBadRequest:
		var pe *ProviderError
		if errors.As(err, &pe) && pe.ModelUnavailable {
			return fmt.Sprintf("The model %q is not available for the configured %s account. Choose a different model.", n.model, n.provider)
		}
		return fmt.Sprintf("The %s API rejected the request as malformed. Check your message and try again.", n.provider)
	case domain.KindUpstream:
		var pe *ProviderError
		if errors.As(err, &pe) && pe.StatusCode > 0 {
			body := pe.Body
			if body == "" {
				body = "(empty body)"
			}
			return fmt.Sprintf("HTTP error %d from %s: %s", pe.StatusCode, n.provider, truncate(n.scrub(body), maxBodyInMessage))
		}
		return fmt.Sprintf("The %s API returned an error.", n.provider)
	case domain.KindMalformed:
		return fmt.Sprintf("The %s API returned a response without generated text.", n.provider)
	default:
		return fmt.Sprintf("Error getting response from %s: %v", n.provider, err)
	}
}

// scrub removes the configured secret and anything that looks like a key.
func (n Normalizer) scrub(s string) string {
	return security.Scrub(s, n.secret)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

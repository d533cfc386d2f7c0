// Package domain contains the core business entities and value objects.
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingAPIKey is returned when a provider is configured without a secret.
var ErrMissingAPIKey = errors.New("provider api key is missing")

// ProviderType identifies an upstream chat provider.
type ProviderType string

const (
	// ProviderAnthropic is the hosted-model messages API.
	ProviderAnthropic ProviderType = "anthropic"

	// ProviderHuggingFace is the inference-hub chat completion router.
	ProviderHuggingFace ProviderType = "huggingface"

	// ProviderTogether is the completions-style API.
	ProviderTogether ProviderType = "together"
)

// ProviderTypes lists every supported provider.
var ProviderTypes = []ProviderType{ProviderAnthropic, ProviderHuggingFace, ProviderTogether}

// IsValid reports whether p names a supported provider.
func (p ProviderType) IsValid() bool {
	for _, t := range ProviderTypes {
		if p == t {
			return true
		}
	}
	return false
}

// ProviderConfig holds everything an adapter needs to reach its upstream.
// It is loaded once at startup and never changed afterwards.
type ProviderConfig struct {
	// APIKey is the provider secret. Never log it.
	APIKey string `json:"-" mapstructure:"api_key"`

	// Endpoint is the base URL of the provider API.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// ModelID is the upstream model identifier.
	ModelID string `json:"model_id" mapstructure:"model_id"`

	// APIVersion is sent as a version header by providers that need one. Optional.
	APIVersion string `json:"api_version,omitempty" mapstructure:"api_version"`

	// InferenceProvider routes hub requests to a specific backend (e.g. "novita"). Optional.
	InferenceProvider string `json:"inference_provider,omitempty" mapstructure:"inference_provider"`
}

// Validate checks the configuration is usable. A missing key wraps ErrMissingAPIKey.
func (c ProviderConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.ModelID == "" {
		return errors.New("provider model_id is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("provider endpoint %q is not an absolute URL", c.Endpoint)
	}
	return nil
}

// BaseURL returns the endpoint without a trailing slash.
func (c ProviderConfig) BaseURL() string {
	return strings.TrimSuffix(c.Endpoint, "/")
}

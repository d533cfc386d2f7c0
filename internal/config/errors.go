package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hpn/hpn-assist/internal/domain"
)

// ConfigError wraps a failure while reading configuration sources.
type ConfigError struct {
	Op  string // dotenv, bind_env, read or unmarshal
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FieldError is one problem found by Validate, attached to a configuration key.
type FieldError struct {
	Key     string
	Problem string
}

func (f FieldError) String() string {
	return f.Key + ": " + f.Problem
}

// ValidationError lists every problem Validate found, in the order checked.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) add(key, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Key: key, Problem: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, f := range e.Errors {
		lines[i] = f.String()
	}
	if len(lines) == 1 {
		return "invalid configuration: " + lines[0]
	}
	return fmt.Sprintf("invalid configuration (%d problems):\n  - %s", len(lines), strings.Join(lines, "\n  - "))
}

// HasError reports whether key has a recorded problem.
func (e *ValidationError) HasError(key string) bool {
	for _, f := range e.Errors {
		if f.Key == key {
			return true
		}
	}
	return false
}

// MissingAPIKeyError describes the active provider starting without a secret.
type MissingAPIKeyError struct {
	Provider domain.ProviderType
}

// EnvVars lists the environment variables that can supply the key, in lookup order.
func (e *MissingAPIKeyError) EnvVars() []string {
	key := "providers." + string(e.Provider) + ".api_key"
	vars := []string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
	if name, ok := wellKnownEnv[key]; ok {
		vars = append(vars, name)
	}
	return vars
}

func (e *MissingAPIKeyError) Error() string {
	return fmt.Sprintf("api key for active provider %q is missing (set %s)",
		e.Provider, strings.Join(e.EnvVars(), " or "))
}

// invalidChoice renders the problem for a value outside an enumerated set.
func invalidChoice(value any, allowed []string) string {
	return fmt.Sprintf("%q is not one of %s", fmt.Sprint(value), strings.Join(allowed, ", "))
}

// IsValidationError checks if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfigError checks if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

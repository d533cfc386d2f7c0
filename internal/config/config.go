// Package config loads the service configuration from .env files, an optional
// config.yaml and the environment using Viper.
package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	// MinTimeoutSeconds is the shortest upstream deadline accepted.
	MinTimeoutSeconds = 10

	// MaxTimeoutSeconds is the longest upstream deadline accepted.
	MaxTimeoutSeconds = 60
)

// Configuration holds all application configuration values.
// It is loaded once at startup and passed by value or pointer; it is never mutated afterwards.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Chat selects the active provider and its deadlines.
	Chat ChatConfig `json:"chat" mapstructure:"chat"`

	// Providers holds one entry per supported upstream.
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// Storage configures the account store.
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Uploads configures file upload storage.
	Uploads UploadsConfig `json:"uploads" mapstructure:"uploads"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`

	// AllowedOrigins is the CORS allow-list.
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ChatConfig holds orchestration settings.
type ChatConfig struct {
	// Provider is the active upstream (anthropic, huggingface, together).
	Provider domain.ProviderType `json:"provider" mapstructure:"provider"`

	// TimeoutSeconds bounds user-facing chat calls.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`

	// ProbeTimeoutSeconds bounds the capability probe.
	ProbeTimeoutSeconds int `json:"probe_timeout_seconds" mapstructure:"probe_timeout_seconds"`
}

// Timeout returns the chat call deadline.
func (c ChatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProbeTimeout returns the capability probe deadline.
func (c ChatConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Anthropic   domain.ProviderConfig `json:"anthropic" mapstructure:"anthropic"`
	HuggingFace domain.ProviderConfig `json:"huggingface" mapstructure:"huggingface"`
	Together    domain.ProviderConfig `json:"together" mapstructure:"together"`
}

// DefaultDatabasePath is the account database used when none, or a server DSN, is configured.
const DefaultDatabasePath = "hpn-assist.db"

// StorageConfig holds account store settings.
type StorageConfig struct {
	// DatabaseURL is the path (or file: URL) of the account database.
	// Server DSNs such as postgresql://... are not used by the embedded store.
	DatabaseURL string `json:"database_url" mapstructure:"database_url"`
}

// IsServerURL reports whether DatabaseURL names a database server rather than a local file.
func (s StorageConfig) IsServerURL() bool {
	scheme, _, found := strings.Cut(s.DatabaseURL, "://")
	// A one-letter scheme is a Windows drive, not a URL.
	return found && len(scheme) > 1 && !strings.EqualFold(scheme, "file")
}

// DatabasePath strips an optional file: scheme from DatabaseURL.
// A server DSN falls back to DefaultDatabasePath.
func (s StorageConfig) DatabasePath() string {
	if s.IsServerURL() {
		return DefaultDatabasePath
	}
	p := strings.TrimPrefix(s.DatabaseURL, "file://")
	return strings.TrimPrefix(p, "file:")
}

// RedactedURL returns DatabaseURL with any password masked, safe for logs.
func (s StorageConfig) RedactedURL() string {
	u, err := url.Parse(s.DatabaseURL)
	if err != nil {
		return "[unparseable database url]"
	}
	return u.Redacted()
}

// UploadsConfig holds upload settings.
type UploadsConfig struct {
	// Dir is where uploaded files are stored and served from.
	Dir string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// SlogLevel converts Level to a slog.Level, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Provider returns the configuration of the given provider.
func (c *Configuration) Provider(p domain.ProviderType) (domain.ProviderConfig, bool) {
	switch p {
	case domain.ProviderAnthropic:
		return c.Providers.Anthropic, true
	case domain.ProviderHuggingFace:
		return c.Providers.HuggingFace, true
	case domain.ProviderTogether:
		return c.Providers.Together, true
	default:
		return domain.ProviderConfig{}, false
	}
}

// ActiveProvider returns the type and configuration of the active provider.
func (c *Configuration) ActiveProvider() (domain.ProviderType, domain.ProviderConfig) {
	pc, _ := c.Provider(c.Chat.Provider)
	return c.Chat.Provider, pc
}

// Validate checks the configuration and reports every problem at once in a ValidationError.
func (c *Configuration) Validate() error {
	ve := &ValidationError{}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		ve.add("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		ve.add("server.shutdown_timeout_seconds", "must be positive")
	}

	if !c.Chat.Provider.IsValid() {
		ve.add("chat.provider", "%s", invalidChoice(c.Chat.Provider, providerNames()))
	}
	checkTimeout(ve, "chat.timeout_seconds", c.Chat.TimeoutSeconds)
	checkTimeout(ve, "chat.probe_timeout_seconds", c.Chat.ProbeTimeoutSeconds)

	// Only the active provider must be complete; the others may stay unconfigured.
	if pt, pc := c.ActiveProvider(); pt.IsValid() {
		if err := pc.Validate(); errors.Is(err, domain.ErrMissingAPIKey) {
			ve.add("providers."+string(pt)+".api_key", "%v", &MissingAPIKeyError{Provider: pt})
		} else if err != nil {
			ve.add("providers."+string(pt), "%v", err)
		}
	}

	if c.Storage.DatabaseURL == "" {
		ve.add("storage.database_url", "is required")
	}
	if c.Uploads.Dir == "" {
		ve.add("uploads.dir", "is required")
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		ve.add("logging.level", "%s", invalidChoice(c.Logging.Level, []string{"debug", "info", "warn", "error"}))
	}
	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		ve.add("logging.format", "%s", invalidChoice(c.Logging.Format, []string{"json", "text"}))
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func checkTimeout(ve *ValidationError, key string, seconds int) {
	if seconds < MinTimeoutSeconds || seconds > MaxTimeoutSeconds {
		ve.add(key, "must be between %d and %d seconds, got %d", MinTimeoutSeconds, MaxTimeoutSeconds, seconds)
	}
}

func providerNames() []string {
	names := make([]string, len(domain.ProviderTypes))
	for i, p := range domain.ProviderTypes {
		names[i] = string(p)
	}
	return names
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

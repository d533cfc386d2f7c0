package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hpn/hpn-assist/internal/adapter"
	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_ASSIST"
)

// wellKnownEnv maps configuration keys to the provider variables operators
// usually already have exported. They are consulted after the prefixed name.
var wellKnownEnv = map[string]string{
	"providers.anthropic.api_key":    "ANTHROPIC_API_KEY",
	"providers.anthropic.model_id":   "ANTHROPIC_MODEL",
	"providers.huggingface.api_key":  "HUGGINGFACE_API_KEY",
	"providers.huggingface.model_id": "HUGGINGFACE_MODEL",
	"providers.together.api_key":     "TOGETHER_API_KEY",
	"providers.together.model_id":    "TOGETHER_MODEL",
	"storage.database_url":           "DATABASE_URL",
}

// Load reads the configuration.
// Priority order (highest to lowest):
// 1. Environment variables (HPN_ASSIST_* then the well-known provider names)
// 2. .env in the working directory (never overrides an exported variable)
// 3. config.yaml, or the file at configPath
// 4. Default values
func Load(configPath string) (*Configuration, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, &ConfigError{Op: "dotenv", Err: err}
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure Viper
	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	// Add config search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hpn-assist")
		v.AddConfigPath("$HOME/.hpn-assist")
	}

	// Enable environment variable override
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := bindWellKnownEnv(v); err != nil {
		return nil, &ConfigError{Op: "bind_env", Err: err}
	}

	// The config file is optional; environment variables are enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	// Unmarshal configuration
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}
	cfg.Chat.Provider = domain.ProviderType(strings.ToLower(string(cfg.Chat.Provider)))

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and exported variables are never overridden.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func bindWellKnownEnv(v *viper.Viper) error {
	for key, name := range wellKnownEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 90)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})

	// Chat defaults
	v.SetDefault("chat.provider", string(domain.ProviderTogether))
	v.SetDefault("chat.timeout_seconds", int(adapter.DefaultChatTimeout.Seconds()))
	v.SetDefault("chat.probe_timeout_seconds", int(adapter.DefaultProbeTimeout.Seconds()))

	// Provider defaults
	v.SetDefault("providers.anthropic.api_key", "")
	v.SetDefault("providers.anthropic.endpoint", adapter.DefaultAnthropicEndpoint)
	v.SetDefault("providers.anthropic.model_id", adapter.DefaultAnthropicModel)
	v.SetDefault("providers.anthropic.api_version", adapter.DefaultAnthropicVersion)
	v.SetDefault("providers.huggingface.api_key", "")
	v.SetDefault("providers.huggingface.endpoint", adapter.DefaultHubEndpoint)
	v.SetDefault("providers.huggingface.model_id", adapter.DefaultHubModel)
	v.SetDefault("providers.huggingface.inference_provider", adapter.DefaultHubInferenceProvider)
	v.SetDefault("providers.together.api_key", "")
	v.SetDefault("providers.together.endpoint", adapter.DefaultCompletionsEndpoint)
	v.SetDefault("providers.together.model_id", adapter.DefaultCompletionsModel)

	// Storage defaults
	v.SetDefault("storage.database_url", DefaultDatabasePath)
	v.SetDefault("uploads.dir", "uploads")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

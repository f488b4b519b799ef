// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./config.yaml or ~/.helpdesk/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - LLM providers: default provider, per-provider model and temperature
//   - Embedding: embedder model and vector dimensions
//   - Storage: PostgreSQL connection (see storage.go)
//   - Server: listen address, auth secret
//
// Secrets (API keys, JWT secret) come from the environment only and are never
// written to the config file. Validation uses sentinel errors so callers can
// check with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Provider identifiers accepted by Config.DefaultProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// Defaults for the retrieval pipeline. The embedder model and dimension must
// agree with the vector(N) column in db/migrations.
const (
	DefaultCollectionName = "faq_embeddings"
	DefaultEmbedderModel  = "text-embedding-3-small"
	DefaultVectorDim      = 1536
	DefaultSearchTopK     = 3
	DefaultHistoryLimit   = 10
)

// Config stores application configuration.
type Config struct {
	// HTTP server
	Addr string `mapstructure:"addr"`

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug | info | warn | error
	LogJSON  bool   `mapstructure:"log_json"`

	// LLM gateway
	DefaultProvider      string  `mapstructure:"default_provider"`
	OpenAIModel          string  `mapstructure:"openai_model"`
	AnthropicModel       string  `mapstructure:"anthropic_model"`
	AnthropicMaxTokens   int     `mapstructure:"anthropic_max_tokens"`
	GoogleModel          string  `mapstructure:"google_model"`
	Temperature          float32 `mapstructure:"temperature"`
	OpenAIAPIKey         string  `mapstructure:"openai_api_key"`    // SENSITIVE: env only
	AnthropicAPIKey      string  `mapstructure:"anthropic_api_key"` // SENSITIVE: env only
	GoogleAPIKey         string  `mapstructure:"google_api_key"`    // SENSITIVE: env only
	GenerateTimeoutSecs  int     `mapstructure:"generate_timeout_secs"`
	EmbeddingTimeoutSecs int     `mapstructure:"embedding_timeout_secs"`

	// Knowledge index
	CollectionName string `mapstructure:"collection_name"`
	EmbedderModel  string `mapstructure:"embedder_model"`
	VectorDim      int    `mapstructure:"vector_dim"`
	SearchTopK     int    `mapstructure:"search_top_k"`

	// Conversation store
	HistoryLimit int `mapstructure:"history_limit"`

	// Storage (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Identity resolution (serve mode)
	JWTSecret string `mapstructure:"jwt_secret"` // SENSITIVE: env only
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".helpdesk"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults", "config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	// LLM gateway defaults. Models mirror what each vendor binding expects;
	// temperature applies to all bindings.
	v.SetDefault("default_provider", ProviderOpenAI)
	v.SetDefault("openai_model", "gpt-3.5-turbo")
	v.SetDefault("anthropic_model", "claude-3-sonnet-20240229")
	v.SetDefault("anthropic_max_tokens", 2000)
	v.SetDefault("google_model", "gemini-2.0-flash")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("generate_timeout_secs", 60)
	v.SetDefault("embedding_timeout_secs", 15)

	// Knowledge index defaults
	v.SetDefault("collection_name", DefaultCollectionName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("vector_dim", DefaultVectorDim)
	v.SetDefault("search_top_k", DefaultSearchTopK)

	// Conversation defaults
	v.SetDefault("history_limit", DefaultHistoryLimit)

	// PostgreSQL defaults for local development
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "helpdesk")
	v.SetDefault("postgres_password", "helpdesk_dev_password")
	v.SetDefault("postgres_db_name", "helpdesk")
	v.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment variables explicitly. Secrets are only
// ever read from the environment, never from the config file.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	// Vendor credentials
	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("anthropic_api_key", "ANTHROPIC_API_KEY")
	mustBind("google_api_key", "GOOGLE_API_KEY")

	// Identity resolution secret
	mustBind("jwt_secret", "JWT_SECRET")

	// Runtime overrides
	mustBind("addr", "HELPDESK_ADDR")
	mustBind("log_level", "HELPDESK_LOG_LEVEL")
	mustBind("log_json", "HELPDESK_LOG_JSON")
	mustBind("default_provider", "HELPDESK_DEFAULT_PROVIDER")
	mustBind("collection_name", "HELPDESK_COLLECTION_NAME")
	mustBind("embedder_model", "HELPDESK_EMBEDDER_MODEL")
}

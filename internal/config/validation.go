package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the default provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidCollectionName indicates the collection name is empty.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrInvalidEmbedderModel indicates the embedder model is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidVectorDim indicates the vector dimension is not positive.
	ErrInvalidVectorDim = errors.New("invalid vector dimension")

	// ErrInvalidSearchTopK indicates search_top_k is not positive.
	ErrInvalidSearchTopK = errors.New("invalid search top k")

	// ErrInvalidHistoryLimit indicates history_limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// validSSLModes are the sslmode values accepted by libpq/pgx.
var validSSLModes = map[string]struct{}{
	"disable":     {},
	"allow":       {},
	"prefer":      {},
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// Validate checks the configuration for invalid values (fail-fast at startup).
//
// Vendor API keys are deliberately NOT validated here: a binding without
// credentials fails at first use with llm.ErrProviderUnconfigured, which
// allows running with only a subset of providers configured.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.DefaultProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
	default:
		return fmt.Errorf("%w: %q (must be one of openai, anthropic, google)", ErrInvalidProvider, c.DefaultProvider)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v (must be in [0, 2])", ErrInvalidTemperature, c.Temperature)
	}

	if c.CollectionName == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidCollectionName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidEmbedderModel)
	}
	if c.VectorDim <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidVectorDim, c.VectorDim)
	}
	if c.SearchTopK < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidSearchTopK, c.SearchTopK)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidHistoryLimit, c.HistoryLimit)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be in [1, 65535])", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPostgresDBName)
	}
	if _, ok := validSSLModes[c.PostgresSSLMode]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}

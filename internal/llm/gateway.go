package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider generates text from an ordered message sequence. Implementations
// carry their own fixed model and sampling parameters; they are constructed
// once per process and must be safe for concurrent use.
type Provider interface {
	// Name returns the identifier the provider registers under.
	Name() string

	// Generate produces a completion for the message sequence. It returns
	// ErrProviderUnconfigured when credentials are missing and ErrGeneration
	// on any vendor, transport, or timeout error.
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Gateway routes generation requests to a closed set of providers. An
// unrecognized provider identifier falls back to the default provider,
// preserving availability over strictness.
type Gateway struct {
	providers   map[string]Provider
	defaultName string
	logger      *slog.Logger
}

// NewGateway builds a gateway over the given providers. defaultName selects
// the fallback binding and must name one of the providers; a defaultName
// with no registered provider is a construction error, since Resolve leans
// on the default for every unrecognized identifier.
func NewGateway(defaultName string, logger *slog.Logger, providers ...Provider) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	if _, ok := byName[defaultName]; !ok {
		return nil, fmt.Errorf("default provider %q is not registered", defaultName)
	}
	return &Gateway{
		providers:   byName,
		defaultName: defaultName,
		logger:      logger,
	}, nil
}

// DefaultProvider returns the identifier of the fallback binding.
func (g *Gateway) DefaultProvider() string {
	return g.defaultName
}

// Resolve maps a provider identifier to its binding. Empty or unrecognized
// identifiers resolve to the default provider.
func (g *Gateway) Resolve(name string) Provider {
	if p, ok := g.providers[name]; ok {
		return p
	}
	if name != "" {
		g.logger.Warn("unknown provider, using default",
			"requested", name,
			"default", g.defaultName)
	}
	return g.providers[g.defaultName]
}

// Generate resolves the named provider and invokes it.
func (g *Gateway) Generate(ctx context.Context, name string, messages []Message) (string, error) {
	return g.Resolve(name).Generate(ctx, messages)
}

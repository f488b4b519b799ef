package llm

import "errors"

var (
	// ErrProviderUnconfigured indicates a provider binding has no
	// credentials. Bindings fail fast with this error at first use, never
	// silently degrade.
	ErrProviderUnconfigured = errors.New("llm provider not configured")

	// ErrGeneration indicates the vendor call errored or timed out. Retry
	// policy belongs to the caller.
	ErrGeneration = errors.New("llm generation failure")
)

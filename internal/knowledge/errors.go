package knowledge

import "errors"

// Sentinel errors for index operations. Check with errors.Is().
var (
	// ErrIndexUnavailable indicates the vector backend is unreachable or the
	// collection could not be created or queried.
	ErrIndexUnavailable = errors.New("knowledge index unavailable")

	// ErrEmbedding indicates embedding generation failed or timed out.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrInvalidTopK indicates a non-positive k was passed to Search.
	ErrInvalidTopK = errors.New("top k must be >= 1")
)

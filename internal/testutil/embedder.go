package testutil

import (
	"context"
	"hash/fnv"
	"math"
)

// HashEmbedder is a deterministic Embedder for tests. It derives a unit
// vector from a hash of the input text, so identical texts always embed to
// identical vectors and distinct texts are very unlikely to collide. It
// makes no network calls.
type HashEmbedder struct {
	// Dim is the vector dimensionality. Must match the schema's vector
	// column width for integration tests.
	Dim int
}

// Embed implements knowledge.Embedder.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := e.Dim
	if dim <= 0 {
		dim = 1536
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	// xorshift over the hash keeps the vector fully determined by the text.
	vec := make([]float32, dim)
	var norm float64
	state := seed | 1
	for i := range vec {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float32(int64(state%2000)-1000) / 1000
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	// Normalize so cosine distance behaves like in production embeddings.
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

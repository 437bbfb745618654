// Package mock provides a deterministic embedder for tests and offline
// use. Embeddings are derived from a hash of the text, so identical
// inputs always produce identical vectors, but there is no real semantic
// similarity between related texts.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder generates deterministic unit vectors from text hashes.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder. dims defaults to 384 when zero, matching
// all-MiniLM-L6-v2.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = 384
	}
	return &Embedder{dimensions: dims}
}

// Embed creates a deterministic embedding from text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	// Use the hash as the seed of a simple LCG
	seed := h.Sum64()
	embedding := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// normalize converts the embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

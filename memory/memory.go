package memory

import "context"

// Store is the vector storage backend interface.
// Implementations: chromem.Store (embedded, in-process).
type Store interface {
	// Store saves a record with its embedding.
	Store(ctx context.Context, rec Record, embedding []float32) error

	// Search retrieves records by vector similarity, scoped to userID.
	// Results are sorted by descending relevance score.
	Search(ctx context.Context, userID string, embedding []float32, limit int) ([]Record, error)

	// Recent returns up to limit records for userID, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]Record, error)

	// Clear deletes all records for userID.
	Clear(ctx context.Context, userID string) error

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings.
// Implementations: openai.Embedder (API-based), onnx.Embedder (local
// model, build tag "onnx"), mock.Embedder (deterministic, for tests).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

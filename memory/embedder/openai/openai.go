// Package openai implements the memory.Embedder interface against any
// OpenAI-compatible embeddings endpoint, such as OpenAI itself or
// SiliconFlow serving BAAI/bge-m3.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config configures the embedder.
type Config struct {
	// APIKey authenticates against the endpoint. Required.
	APIKey string

	// BaseURL overrides the endpoint (default: OpenAI).
	BaseURL string

	// Model is the embedding model identifier. Required.
	Model string

	// Dimensions is the vector size the model produces.
	Dimensions int
}

// Embedder generates embeddings via an OpenAI-compatible API.
type Embedder struct {
	client openai.Client
	cfg    Config
}

// New creates an API-backed embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedder requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedder requires a model")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedder requires positive dimensions, got %d", cfg.Dimensions)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Embedder{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.cfg.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings request: empty response")
	}

	raw := resp.Data[0].Embedding
	if len(raw) != e.cfg.Dimensions {
		return nil, fmt.Errorf("embeddings request: got %d dimensions, expected %d", len(raw), e.cfg.Dimensions)
	}

	embedding := make([]float32, len(raw))
	for i, v := range raw {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.cfg.Dimensions
}

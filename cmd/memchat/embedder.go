package main

import (
	"fmt"

	"github.com/memtide/memchat/config"
	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/memory/embedder/mock"
	openaiembed "github.com/memtide/memchat/memory/embedder/openai"
)

// newEmbedder builds the embedding backend named by the configuration.
func newEmbedder(cfg config.EmbedderConfig) (memory.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return openaiembed.New(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.APIBase,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "mock":
		return mock.New(cfg.Dimensions), nil
	case "onnx":
		return newONNXEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedder provider: %s", cfg.Provider)
	}
}

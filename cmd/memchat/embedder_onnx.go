//go:build onnx

package main

import (
	"github.com/memtide/memchat/config"
	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/memory/embedder/onnx"
)

func newONNXEmbedder(cfg config.EmbedderConfig) (memory.Embedder, error) {
	return onnx.New(onnx.Config{
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		Dimensions:    cfg.Dimensions,
	})
}

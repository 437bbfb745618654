//go:build !onnx

package main

import (
	"fmt"

	"github.com/memtide/memchat/config"
	"github.com/memtide/memchat/memory"
)

func newONNXEmbedder(cfg config.EmbedderConfig) (memory.Embedder, error) {
	return nil, fmt.Errorf("onnx embedder requires building with -tags onnx")
}

// Package provider abstracts LLM vendors behind a common streaming
// chat-completion interface.
//
// memchat talks to OpenAI-compatible endpoints (OpenAI, OpenRouter,
// SiliconFlow), Anthropic, and local Ollama servers. The chat loop stays
// vendor-agnostic; each implementation handles the wire protocol and
// streams text fragments back through a callback.
package provider

import (
	"context"

	"github.com/memtide/memchat/core"
)

// StreamCallback receives text fragments in arrival order. Returning an
// error aborts the stream.
type StreamCallback func(chunk string) error

// Provider is the contract all vendor implementations satisfy.
// Concatenating every fragment delivered by Chat must equal the text
// returned by Complete for the same input.
type Provider interface {
	// Chat streams a completion for the conversation through callback.
	Chat(ctx context.Context, messages []core.Message, callback StreamCallback) error

	// Complete returns the full completion text in one call.
	Complete(ctx context.Context, messages []core.Message) (string, error)

	// Model returns the model identifier requests are routed to.
	Model() string

	// Ping verifies the endpoint is reachable and credentials work.
	Ping(ctx context.Context) error
}

// Type identifies the provider implementation.
type Type string

const (
	TypeOpenAI    Type = "openai"
	TypeAnthropic Type = "anthropic"
	TypeOllama    Type = "ollama"
)

// Config holds the vendor-specific connection and sampling settings.
// Vendors differ only in endpoint, key, and model; the protocol family
// is selected by Type.
type Config struct {
	Type        Type
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/memtide/memchat/core"
)

// OllamaProvider implements Provider against a local Ollama server.
// Ollama is unauthenticated, so no API key is required.
type OllamaProvider struct {
	client *api.Client
	cfg    Config
}

// NewOllamaProvider creates an Ollama provider instance.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Ollama provider requires a model")
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(parsedURL, http.DefaultClient),
		cfg:    cfg,
	}, nil
}

func (p *OllamaProvider) request(messages []core.Message, stream bool) *api.ChatRequest {
	converted := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	options := map[string]any{
		"temperature": p.cfg.Temperature,
		"top_p":       p.cfg.TopP,
	}
	if p.cfg.MaxTokens > 0 {
		options["num_predict"] = p.cfg.MaxTokens
	}

	return &api.ChatRequest{
		Model:    p.cfg.Model,
		Messages: converted,
		Stream:   &stream,
		Options:  options,
	}
}

// Chat implements Provider.Chat with streaming output.
func (p *OllamaProvider) Chat(ctx context.Context, messages []core.Message, callback StreamCallback) error {
	err := p.client.Chat(ctx, p.request(messages, true), func(resp api.ChatResponse) error {
		if callback != nil && resp.Message.Content != "" {
			return callback(resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}
	return nil
}

// Complete implements Provider.Complete.
func (p *OllamaProvider) Complete(ctx context.Context, messages []core.Message) (string, error) {
	var sb strings.Builder
	err := p.client.Chat(ctx, p.request(messages, false), func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return sb.String(), nil
}

// Model implements Provider.Model.
func (p *OllamaProvider) Model() string {
	return p.cfg.Model
}

// Ping implements Provider.Ping by listing local models.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if _, err := p.client.List(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

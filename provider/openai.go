package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/memtide/memchat/core"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completion endpoint.
// OpenRouter and SiliconFlow use this implementation with their own base
// URL, key, and model; nothing else differs between those vendors.
type OpenAIProvider struct {
	client openai.Client
	cfg    Config
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
// Returns an error if the API key is missing.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI-compatible provider requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("OpenAI-compatible provider requires a model")
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	)

	return &OpenAIProvider{client: client, cfg: cfg}, nil
}

func (p *OpenAIProvider) params(messages []core.Message) openai.ChatCompletionNewParams {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    converted,
		Model:       openai.ChatModel(p.cfg.Model),
		Temperature: openai.Float(p.cfg.Temperature),
		TopP:        openai.Float(p.cfg.TopP),
	}
	if p.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.cfg.MaxTokens))
	}
	return params
}

// Chat implements Provider.Chat with streaming output.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []core.Message, callback StreamCallback) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages))

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if callback != nil {
				if err := callback(chunk.Choices[0].Delta.Content); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}
	return nil
}

// Complete implements Provider.Complete.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.params(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion failed: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model implements Provider.Model.
func (p *OpenAIProvider) Model() string {
	return p.cfg.Model
}

// Ping implements Provider.Ping by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

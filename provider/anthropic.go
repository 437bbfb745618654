package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/memtide/memchat/core"
)

// AnthropicProvider implements Provider using Anthropic's official SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	cfg    Config
}

// NewAnthropicProvider creates an Anthropic provider instance.
// Returns an error if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic provider requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Anthropic provider requires a model")
	}

	client := anthropic.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	)

	return &AnthropicProvider{client: &client, cfg: cfg}, nil
}

// params splits system messages into Anthropic's dedicated system field;
// the Messages API rejects system-role entries in the message list.
func (p *AnthropicProvider) params(messages []core.Message) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	converted := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case core.RoleAssistant:
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	maxTokens := int64(p.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048 // MaxTokens is required by the Messages API
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.cfg.Model),
		Messages:    converted,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(p.cfg.Temperature),
		TopP:        anthropic.Float(p.cfg.TopP),
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}

// Chat implements Provider.Chat with streaming output.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []core.Message, callback StreamCallback) error {
	stream := p.client.Messages.NewStreaming(ctx, p.params(messages))

	msg := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if callback != nil {
					if err := callback(deltaVariant.Text); err != nil {
						return err
					}
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
func (p *AnthropicProvider) Complete(ctx context.Context, messages []core.Message) (string, error) {
	msg, err := p.client.Messages.New(ctx, p.params(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(variant.Text)
		}
	}
	return sb.String(), nil
}

// Model implements Provider.Model.
func (p *AnthropicProvider) Model() string {
	return p.cfg.Model
}

// Ping implements Provider.Ping by listing models.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

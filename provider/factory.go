package provider

import "fmt"

// New creates a provider from configuration, dispatching on cfg.Type.
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case TypeOpenAI:
		return NewOpenAIProvider(cfg)
	case TypeAnthropic:
		return NewAnthropicProvider(cfg)
	case TypeOllama:
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

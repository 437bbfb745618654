package provider

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "openai provider",
			config: Config{
				Type:   TypeOpenAI,
				Model:  "gpt-4o-mini",
				APIKey: "test-key",
			},
		},
		{
			name: "openai provider without key",
			config: Config{
				Type:  TypeOpenAI,
				Model: "gpt-4o-mini",
			},
			expectError: true,
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   TypeAnthropic,
				Model:  "claude-sonnet-4-20250514",
				APIKey: "test-key",
			},
		},
		{
			name: "anthropic provider without key",
			config: Config{
				Type:  TypeAnthropic,
				Model: "claude-sonnet-4-20250514",
			},
			expectError: true,
		},
		{
			name: "ollama provider needs no key",
			config: Config{
				Type:  TypeOllama,
				Model: "llama3.1",
			},
		},
		{
			name: "ollama provider without model",
			config: Config{
				Type: TypeOllama,
			},
			expectError: true,
		},
		{
			name: "unknown provider type",
			config: Config{
				Type:  Type("unknown"),
				Model: "m",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected provider, got nil")
			}
			if got := p.Model(); got != tt.config.Model {
				t.Errorf("Model() = %q, want %q", got, tt.config.Model)
			}
		})
	}
}

func TestNew_UnknownTypeMessage(t *testing.T) {
	_, err := New(Config{Type: Type("groq"), Model: "m", APIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "groq") {
		t.Errorf("error should name the unknown type, got %v", err)
	}
}

// Package config loads memchat's TOML configuration.
//
// The file mirrors the layout the rest of the code is organized around:
// a [providers.<name>] table per LLM vendor and a [memory.mem0] table for
// the memory backend. Configuration is loaded once at startup and treated
// as immutable for the process lifetime; a malformed or missing file is a
// fatal startup error.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults applied to provider entries that omit the optional keys.
const (
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 2000
	DefaultTopP         = 1.0
	DefaultSystemPrompt = "You are a helpful AI assistant. Use the provided memories to give context-aware responses."
)

// ProviderConfig describes one LLM vendor entry under [providers.<name>].
// Vendors differ only in endpoint, key, model, and sampling parameters,
// not in protocol.
type ProviderConfig struct {
	Type         string  `toml:"type"` // "openai" (default), "anthropic", "ollama"
	APIKey       string  `toml:"api_key"`
	APIBase      string  `toml:"api_base"`
	Model        string  `toml:"model"`
	Temperature  float64 `toml:"temperature"`
	MaxTokens    int     `toml:"max_tokens"`
	TopP         float64 `toml:"top_p"`
	SystemPrompt string  `toml:"system_prompt"`
}

// EmbedderConfig configures the embedding model used by the memory layer.
// ModelPath and TokenizerPath are only read by the local "onnx" provider.
type EmbedderConfig struct {
	Provider      string `toml:"provider"` // "openai", "mock", "onnx"
	APIKey        string `toml:"api_key"`
	APIBase       string `toml:"api_base"`
	Model         string `toml:"model"`
	Dimensions    int    `toml:"dimensions"`
	ModelPath     string `toml:"model_path"`
	TokenizerPath string `toml:"tokenizer_path"`
}

// VectorStoreConfig configures the vector storage backend.
type VectorStoreConfig struct {
	Provider   string `toml:"provider"` // "chromem"
	Dimensions int    `toml:"dimensions"`
}

// MemoryConfig is the [memory.mem0] table.
type MemoryConfig struct {
	Embedder      EmbedderConfig    `toml:"embedder"`
	VectorStore   VectorStoreConfig `toml:"vector_store"`
	SearchLimit   int               `toml:"search_limit"`
	ContextLimit  int               `toml:"context_limit"`
	MinSimilarity float64           `toml:"min_similarity"`
}

type memorySection struct {
	Mem0 MemoryConfig `toml:"mem0"`
}

// Config is the full, validated configuration.
type Config struct {
	DefaultProvider string                    `toml:"default_provider"`
	UserID          string                    `toml:"user_id"`
	Providers       map[string]ProviderConfig `toml:"providers"`
	Memory          memorySection             `toml:"memory"`
}

// Mem0 returns the memory backend configuration.
func (c *Config) Mem0() MemoryConfig {
	return c.Memory.Mem0
}

// Provider returns the named provider entry.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	p, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("provider %q not found in configuration", name)
	}
	return p, nil
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("MEMCHAT_PROVIDER"); p != "" {
		c.DefaultProvider = p
	}
	if u := os.Getenv("MEMCHAT_USER_ID"); u != "" {
		c.UserID = u
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	if p.Type == "" {
		p.Type = "openai"
	}
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	if p.TopP == 0 {
		p.TopP = DefaultTopP
	}
	if p.SystemPrompt == "" {
		p.SystemPrompt = DefaultSystemPrompt
	}
}

func applyMemoryDefaults(m *MemoryConfig) {
	if m.SearchLimit == 0 {
		m.SearchLimit = 5
	}
	if m.ContextLimit == 0 {
		m.ContextLimit = 3
	}
	if m.Embedder.Provider == "" {
		m.Embedder.Provider = "openai"
	}
	if m.Embedder.Dimensions == 0 {
		m.Embedder.Dimensions = 1024
	}
	if m.VectorStore.Provider == "" {
		m.VectorStore.Provider = "chromem"
	}
	if m.VectorStore.Dimensions == 0 {
		m.VectorStore.Dimensions = m.Embedder.Dimensions
	}
}

func validate(c *Config) error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("configuration has no [providers] entries")
	}
	for name, p := range c.Providers {
		if p.Model == "" {
			return fmt.Errorf("provider %q: missing required key %q", name, "model")
		}
		// Local Ollama servers are unauthenticated; every cloud vendor needs a key.
		if p.Type != "ollama" && p.APIKey == "" {
			return fmt.Errorf("provider %q: missing required key %q", name, "api_key")
		}
	}
	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			return fmt.Errorf("default_provider %q not found in [providers]", c.DefaultProvider)
		}
	}
	emb := c.Memory.Mem0.Embedder
	if emb.Provider == "openai" {
		if emb.Model == "" {
			return fmt.Errorf("memory.mem0.embedder: missing required key %q", "model")
		}
		if emb.APIKey == "" {
			return fmt.Errorf("memory.mem0.embedder: missing required key %q", "api_key")
		}
	}
	return nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	for name := range cfg.Providers {
		p := cfg.Providers[name]
		applyProviderDefaults(&p)
		cfg.Providers[name] = p
	}
	applyMemoryDefaults(&cfg.Memory.Mem0)

	if cfg.DefaultProvider == "" && len(cfg.Providers) == 1 {
		for name := range cfg.Providers {
			cfg.DefaultProvider = name
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

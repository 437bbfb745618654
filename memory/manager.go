package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/memtide/memchat/core"
)

// Manager orchestrates memory operations for the chat loop. All
// operations are scoped to a user identifier; the vector store is the
// single source of truth.
type Manager struct {
	store    Store
	embedder Embedder
	config   *Config

	// cache holds embeddings keyed by text so repeated queries and
	// re-submitted turns embed once.
	cache *ristretto.Cache

	// pending tracks in-flight AddAsync writes. Search and Profile wait
	// on it so asynchronous writes are observed by the next read.
	pending sync.WaitGroup
}

// Config holds Manager tunables.
type Config struct {
	// SearchLimit caps results returned by Search and Profile.
	SearchLimit int

	// ContextLimit caps memories injected into the prompt by Context.
	ContextLimit int

	// MinSimilarity drops search results scoring below it [0.0-1.0].
	// API embedders produce scores in the 0.5-0.9 range for related
	// text; tiny local models score lower.
	MinSimilarity float64
}

// DefaultConfig returns defaults matching the example configuration.
var DefaultConfig = &Config{
	SearchLimit:   5,
	ContextLimit:  3,
	MinSimilarity: 0.0,
}

// addTimeout bounds background writes issued by AddAsync.
const addTimeout = 30 * time.Second

// NewManager creates a Manager.
func NewManager(store Store, embedder Embedder, config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     8 << 20, // 8 MiB of embeddings
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Manager{
		store:    store,
		embedder: embedder,
		config:   config,
		cache:    cache,
	}, nil
}

func (m *Manager) embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := m.cache.Get(text); ok {
		if embedding, ok := cached.([]float32); ok {
			return embedding, nil
		}
	}

	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	m.cache.Set(text, embedding, int64(len(embedding)*4))
	m.cache.Wait() // make the write visible to the next lookup
	return embedding, nil
}

// Add persists one record per message, tagged with the message role.
// Per-record failures are logged and skipped; the conversation must not
// be interrupted by a memory write failure.
func (m *Manager) Add(ctx context.Context, userID string, msgs []core.Message) error {
	for i, msg := range msgs {
		embedding, err := m.embed(ctx, msg.Content)
		if err != nil {
			log.Printf("[MEMORY] Failed to embed turn #%d: %v", i+1, err)
			continue
		}

		rec := NewRecord(userID, msg.Content, map[string]string{
			"role": string(msg.Role),
		})
		if err := m.store.Store(ctx, rec, embedding); err != nil {
			log.Printf("[MEMORY] Failed to store turn #%d: %v", i+1, err)
			continue
		}
	}
	return nil
}

// AddAsync persists messages in the background without blocking the next
// prompt. The write is tracked so a following Search observes it.
func (m *Manager) AddAsync(userID string, msgs []core.Message) {
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), addTimeout)
		defer cancel()
		if err := m.Add(ctx, userID, msgs); err != nil {
			log.Printf("[MEMORY] Background add failed: %v", err)
		}
	}()
}

// Wait blocks until all background writes have settled.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Search returns up to limit records relevant to query, ordered by
// descending relevance score.
func (m *Manager) Search(ctx context.Context, userID string, query string, limit int) ([]Record, error) {
	m.pending.Wait()

	if limit <= 0 || limit > m.config.SearchLimit {
		limit = m.config.SearchLimit
	}

	embedding, err := m.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := m.store.Search(ctx, userID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}

	filtered := results[:0]
	for _, rec := range results {
		if rec.Score >= m.config.MinSimilarity {
			filtered = append(filtered, rec)
		}
	}

	log.Printf("[MEMORY] Retrieved %d memories for query: %q", len(filtered), truncateLog(query, 50))
	return filtered, nil
}

// Profile returns the most recent records for the user.
func (m *Manager) Profile(ctx context.Context, userID string, limit int) ([]Record, error) {
	m.pending.Wait()

	if limit <= 0 || limit > m.config.SearchLimit {
		limit = m.config.SearchLimit
	}

	records, err := m.store.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return records, nil
}

// Clear deletes all records for the user.
func (m *Manager) Clear(ctx context.Context, userID string) error {
	m.pending.Wait()

	if err := m.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear memories: %w", err)
	}
	log.Printf("[MEMORY] Cleared memories for user %s", userID)
	return nil
}

// Context returns a formatted block of memories relevant to query, ready
// for prompt injection. Returns an empty string when nothing matches.
func (m *Manager) Context(ctx context.Context, userID string, query string) (string, error) {
	records, err := m.Search(ctx, userID, query, m.config.ContextLimit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	var parts []string
	parts = append(parts, "Relevant Memories:")
	for _, rec := range records {
		parts = append(parts, fmt.Sprintf("- %s (Relevance: %.2f)", rec.Content, rec.Score))
	}
	return strings.Join(parts, "\n"), nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

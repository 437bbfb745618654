package memory_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/memtide/memchat/core"
	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/memory/embedder/mock"
	"github.com/memtide/memchat/memory/store/chromem"
)

// countingEmbedder wraps the mock embedder and counts calls.
type countingEmbedder struct {
	*mock.Embedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.Embedder.Embed(ctx, text)
}

func newTestManager(t *testing.T) (*memory.Manager, *countingEmbedder) {
	t.Helper()

	store, err := chromem.New()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	embedder := &countingEmbedder{Embedder: mock.New(384)}

	manager, err := memory.NewManager(store, embedder, &memory.Config{
		SearchLimit:   5,
		ContextLimit:  3,
		MinSimilarity: 0.0,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return manager, embedder
}

func TestManager_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	err := manager.Add(ctx, "user1", []core.Message{
		core.UserMessage("I love hiking in the mountains"),
		core.AssistantMessage("Noted, you enjoy mountain hiking."),
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// The mock embedder maps identical text to identical vectors, so
	// searching with a stored text must rank it first with score ~1.
	records, err := manager.Search(ctx, "user1", "I love hiking in the mountains", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) == 0 {
		t.Fatal("Search() returned no records")
	}
	if records[0].Content != "I love hiking in the mountains" {
		t.Errorf("top result = %q, want the exact match", records[0].Content)
	}
	if records[0].Score < 0.99 {
		t.Errorf("top result score = %v, want ~1.0", records[0].Score)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Score > records[i-1].Score {
			t.Errorf("results not sorted by descending score at index %d", i)
		}
	}
	if got := records[0].Metadata["role"]; got != "user" {
		t.Errorf("top result role = %q, want %q", got, "user")
	}
}

func TestManager_SearchEmptyStore(t *testing.T) {
	manager, _ := newTestManager(t)

	records, err := manager.Search(context.Background(), "user1", "anything", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Search() on empty store returned %d records", len(records))
	}
}

func TestManager_UserNamespacing(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	if err := manager.Add(ctx, "user1", []core.Message{core.UserMessage("user1 secret")}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := manager.Add(ctx, "user2", []core.Message{core.UserMessage("user2 secret")}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	records, err := manager.Search(ctx, "user1", "user2 secret", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, rec := range records {
		if rec.Content == "user2 secret" {
			t.Error("user1 search must not see user2's records")
		}
	}
}

func TestManager_AddAsyncVisibleToSearch(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	manager.AddAsync("user1", []core.Message{core.UserMessage("remember the milk")})

	// Search waits for pending writes, so the record must be visible
	// without an explicit sleep.
	records, err := manager.Search(ctx, "user1", "remember the milk", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) == 0 {
		t.Fatal("asynchronously added record not visible to Search")
	}
}

func TestManager_ClearThenProfile(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	manager.AddAsync("user1", []core.Message{
		core.UserMessage("first"),
		core.AssistantMessage("second"),
	})

	records, err := manager.Profile(ctx, "user1", 5)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Profile() returned %d records, want 2", len(records))
	}

	if err := manager.Clear(ctx, "user1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	records, err = manager.Profile(ctx, "user1", 5)
	if err != nil {
		t.Fatalf("Profile() after Clear error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Profile() after Clear returned %d records, want 0", len(records))
	}
}

func TestManager_ProfileNewestFirst(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	for _, text := range []string{"oldest", "middle", "newest"} {
		if err := manager.Add(ctx, "user1", []core.Message{core.UserMessage(text)}); err != nil {
			t.Fatalf("Add(%s) error = %v", text, err)
		}
	}

	records, err := manager.Profile(ctx, "user1", 2)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Profile() returned %d records, want 2", len(records))
	}
	if records[0].Content != "newest" || records[1].Content != "middle" {
		t.Errorf("Profile() order = [%s, %s], want [newest, middle]", records[0].Content, records[1].Content)
	}
}

func TestManager_Context(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	formatted, err := manager.Context(ctx, "user1", "anything")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if formatted != "" {
		t.Errorf("Context() on empty store = %q, want empty", formatted)
	}

	if err := manager.Add(ctx, "user1", []core.Message{core.UserMessage("my dog is called Rex")}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	formatted, err = manager.Context(ctx, "user1", "my dog is called Rex")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if !strings.Contains(formatted, "Relevant Memories:") {
		t.Errorf("Context() = %q, want memories header", formatted)
	}
	if !strings.Contains(formatted, "my dog is called Rex") {
		t.Errorf("Context() = %q, want record content", formatted)
	}
	if !strings.Contains(formatted, "Relevance:") {
		t.Errorf("Context() = %q, want relevance scores", formatted)
	}
}

func TestManager_EmbeddingCache(t *testing.T) {
	ctx := context.Background()
	manager, embedder := newTestManager(t)

	if _, err := manager.Search(ctx, "user1", "repeated query", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	first := embedder.calls.Load()

	if _, err := manager.Search(ctx, "user1", "repeated query", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := embedder.calls.Load(); got != first {
		t.Errorf("repeated query embedded again: %d calls, want %d", got, first)
	}
}

func TestManager_MinSimilarityFilter(t *testing.T) {
	ctx := context.Background()

	store, err := chromem.New()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	manager, err := memory.NewManager(store, mock.New(384), &memory.Config{
		SearchLimit:   5,
		ContextLimit:  3,
		MinSimilarity: 0.9,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}

	if err := manager.Add(ctx, "user1", []core.Message{core.UserMessage("stored text")}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Mock embeddings of unrelated texts are effectively orthogonal, so
	// a high threshold must drop them.
	records, err := manager.Search(ctx, "user1", "completely different words", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Search() returned %d low-similarity records, want 0", len(records))
	}

	records, err = manager.Search(ctx, "user1", "stored text", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("exact match filtered out: got %d records, want 1", len(records))
	}
}

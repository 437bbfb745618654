package chat

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/memory/embedder/mock"
	"github.com/memtide/memchat/memory/store/chromem"
)

// These tests run the loop against the real memory manager with an
// in-process vector store, covering the command flow end to end.

func newRealMemory(t *testing.T) *memory.Manager {
	t.Helper()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	manager, err := memory.NewManager(store, mock.New(384), nil)
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return manager
}

func runRealLoop(t *testing.T, input string, p *fakeProvider, m *memory.Manager) string {
	t.Helper()
	var out bytes.Buffer
	loop := New(Options{
		Provider:     p,
		Memory:       m,
		UserID:       "itest_user",
		SystemPrompt: "You are a helpful AI assistant.",
		SearchLimit:  5,
		In:           strings.NewReader(input),
		Out:          &out,
	})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestLoop_ClearThenProfileIsEmpty(t *testing.T) {
	p := &fakeProvider{chunks: []string{"Nice to meet you."}}
	m := newRealMemory(t)

	out := runRealLoop(t, "my name is Ada\n/clear\n/profile\n/exit\n", p, m)

	if !strings.Contains(out, "Chat history cleared.") {
		t.Errorf("output %q missing clear confirmation", out)
	}
	if !strings.Contains(out, "No recent memories found.") {
		t.Errorf("profile after /clear should be empty, got %q", out)
	}
}

func TestLoop_TurnThenProfileShowsBothSides(t *testing.T) {
	p := &fakeProvider{chunks: []string{"Hello Ada!"}}
	m := newRealMemory(t)

	out := runRealLoop(t, "my name is Ada\n/profile\n/exit\n", p, m)

	if !strings.Contains(out, "Recent Memories:") {
		t.Errorf("output %q missing profile listing", out)
	}
	if !strings.Contains(out, "my name is Ada") {
		t.Errorf("profile missing the user turn, got %q", out)
	}
	if !strings.Contains(out, "Hello Ada!") {
		t.Errorf("profile missing the assistant turn, got %q", out)
	}
}

func TestLoop_TurnThenSearchFindsIt(t *testing.T) {
	p := &fakeProvider{chunks: []string{"Got it."}}
	m := newRealMemory(t)

	// The mock embedder only matches identical text, so search with the
	// exact stored turn.
	out := runRealLoop(t, "remember the milk\n/search remember the milk\n/exit\n", p, m)

	if !strings.Contains(out, "Relevant Memories:") {
		t.Errorf("output %q missing search results", out)
	}
	if !strings.Contains(out, "remember the milk") {
		t.Errorf("search output missing the stored turn, got %q", out)
	}
}

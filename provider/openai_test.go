package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/memtide/memchat/core"
)

// fakeEndpoint is an OpenAI-compatible chat-completion server that
// records the model requested of it.
type fakeEndpoint struct {
	reply    string
	chunks   []string
	requests []string // model field of each request received
}

func (f *fakeEndpoint) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		var body struct {
			Model  string `json:"model"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.requests = append(f.requests, body.Model)

		if body.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, chunk := range f.chunks {
				payload, _ := json.Marshal(map[string]any{
					"id":      "chatcmpl-test",
					"object":  "chat.completion.chunk",
					"created": 1,
					"model":   body.Model,
					"choices": []map[string]any{
						{"index": 0, "delta": map[string]any{"content": chunk}},
					},
				})
				fmt.Fprintf(w, "data: %s\n\n", payload)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   body.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": f.reply},
					"finish_reason": "stop",
				},
			},
		})
	}
}

func newTestProvider(t *testing.T, endpoint *fakeEndpoint, model string) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(endpoint.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(Config{
		Type:        TypeOpenAI,
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       model,
		Temperature: 0.7,
		TopP:        1.0,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	return p, srv
}

// Selecting provider B must route calls to B's endpoint and model, never
// to A's.
func TestOpenAIProvider_Routing(t *testing.T) {
	endpointA := &fakeEndpoint{reply: "from A"}
	endpointB := &fakeEndpoint{reply: "from B"}
	_, _ = newTestProvider(t, endpointA, "model-a")
	providerB, _ := newTestProvider(t, endpointB, "model-b")

	got, err := providerB.Complete(context.Background(), []core.Message{core.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from B" {
		t.Errorf("Complete() = %q, want %q", got, "from B")
	}

	if len(endpointA.requests) != 0 {
		t.Errorf("endpoint A received %d requests, want 0", len(endpointA.requests))
	}
	if len(endpointB.requests) != 1 || endpointB.requests[0] != "model-b" {
		t.Errorf("endpoint B requests = %v, want one request for model-b", endpointB.requests)
	}
}

// Concatenating streamed fragments must equal the non-streaming
// completion for the same input.
func TestOpenAIProvider_StreamMatchesComplete(t *testing.T) {
	endpoint := &fakeEndpoint{
		reply:  "Hello there, friend.",
		chunks: []string{"Hello ", "there, ", "friend."},
	}
	p, _ := newTestProvider(t, endpoint, "model-x")

	messages := []core.Message{
		core.SystemMessage("You are terse."),
		core.UserMessage("greet me"),
	}

	var streamed strings.Builder
	err := p.Chat(context.Background(), messages, func(chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	full, err := p.Complete(context.Background(), messages)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if streamed.String() != full {
		t.Errorf("streamed %q != complete %q", streamed.String(), full)
	}
}

func TestOpenAIProvider_ErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(Config{
		Type:    TypeOpenAI,
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "model-x",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	_, err = p.Complete(context.Background(), []core.Message{core.UserMessage("hi")})
	if err == nil {
		t.Fatal("expected error from failing endpoint")
	}
	if !strings.Contains(err.Error(), "chat completion failed") {
		t.Errorf("error %q should be wrapped as a completion failure", err)
	}

	err = p.Chat(context.Background(), []core.Message{core.UserMessage("hi")}, nil)
	if err == nil {
		t.Fatal("expected streaming error from failing endpoint")
	}
}

// Package chat implements the interactive REPL: reading user input,
// dispatching slash-commands, assembling memory-augmented prompts, and
// streaming replies to the terminal.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/memtide/memchat/core"
	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/provider"
)

// Memory is the subset of memory manager operations the loop needs.
type Memory interface {
	Context(ctx context.Context, userID string, query string) (string, error)
	AddAsync(userID string, msgs []core.Message)
	Search(ctx context.Context, userID string, query string, limit int) ([]memory.Record, error)
	Profile(ctx context.Context, userID string, limit int) ([]memory.Record, error)
	Clear(ctx context.Context, userID string) error
}

// Options configures a Loop.
type Options struct {
	Provider     provider.Provider
	Memory       Memory
	UserID       string
	SystemPrompt string

	// SearchLimit caps /search results. Zero means the memory
	// manager's own limit.
	SearchLimit int

	// In and Out default to the process's stdin and stdout; tests
	// substitute buffers.
	In  io.Reader
	Out io.Writer
}

// Loop is the interactive chat session. One user turn is processed at a
// time; no state survives the process beyond what the memory backend
// persists.
type Loop struct {
	provider     provider.Provider
	memory       Memory
	userID       string
	systemPrompt string
	searchLimit  int
	in           io.Reader
	out          io.Writer

	// history is the in-memory conversation buffer for this session.
	history []core.Message
}

// New creates a chat loop.
func New(opts Options) *Loop {
	return &Loop{
		provider:     opts.Provider,
		memory:       opts.Memory,
		userID:       opts.UserID,
		systemPrompt: opts.SystemPrompt,
		searchLimit:  opts.SearchLimit,
		in:           opts.In,
		out:          opts.Out,
	}
}

// Run reads input until /exit or EOF. Command and completion failures
// are reported in the transcript; only input errors end the loop.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.in)

	for {
		fmt.Fprint(l.out, "\nYou: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil // EOF
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if done := l.dispatchCommand(ctx, input); done {
				return nil
			}
			continue
		}

		l.chatTurn(ctx, input)
	}
}

// chatTurn handles one normal conversation turn: retrieve relevant
// memories, stream the reply, then persist both sides of the exchange.
func (l *Loop) chatTurn(ctx context.Context, input string) {
	memContext, err := l.memory.Context(ctx, l.userID, input)
	if err != nil {
		// A memory read failure must not block the conversation.
		log.Printf("[CHAT] Memory retrieval failed: %v", err)
		memContext = ""
	}

	system := l.systemPrompt
	if memContext != "" {
		system = system + "\n\n" + memContext
	}

	messages := make([]core.Message, 0, len(l.history)+2)
	messages = append(messages, core.SystemMessage(system))
	messages = append(messages, l.history...)
	userMsg := core.UserMessage(input)
	messages = append(messages, userMsg)

	fmt.Fprint(l.out, "\nAssistant: ")

	var reply strings.Builder
	err = l.provider.Chat(ctx, messages, func(chunk string) error {
		reply.WriteString(chunk)
		_, werr := fmt.Fprint(l.out, chunk)
		return werr
	})
	if err != nil {
		fmt.Fprintf(l.out, "\nError: %v\n", err)
		return
	}
	fmt.Fprintln(l.out)

	assistantMsg := core.AssistantMessage(reply.String())
	l.history = append(l.history, userMsg, assistantMsg)

	// Persist the exchange without blocking the next prompt.
	l.memory.AddAsync(l.userID, []core.Message{userMsg, assistantMsg})
}

// History returns the session's conversation buffer.
func (l *Loop) History() []core.Message {
	return l.history
}

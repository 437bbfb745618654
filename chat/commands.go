package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/memtide/memchat/memory"
)

// dispatchCommand handles a slash-command. Returns true when the loop
// should terminate.
func (l *Loop) dispatchCommand(ctx context.Context, input string) bool {
	parts := strings.SplitN(input[1:], " ", 2)
	cmd := strings.ToLower(parts[0])

	switch {
	case cmd == "exit":
		fmt.Fprintln(l.out, "Goodbye!")
		return true

	case cmd == "search" && len(parts) > 1 && strings.TrimSpace(parts[1]) != "":
		query := strings.TrimSpace(parts[1])
		fmt.Fprintf(l.out, "\nSearching memories for: %s\n", query)
		records, err := l.memory.Search(ctx, l.userID, query, l.searchLimit)
		if err != nil {
			fmt.Fprintf(l.out, "Error searching memories: %v\n", err)
			return false
		}
		l.printRecords(records)

	case cmd == "profile":
		records, err := l.memory.Profile(ctx, l.userID, l.searchLimit)
		if err != nil {
			fmt.Fprintf(l.out, "Error loading profile: %v\n", err)
			return false
		}
		l.printProfile(records)

	case cmd == "clear":
		if err := l.memory.Clear(ctx, l.userID); err != nil {
			fmt.Fprintln(l.out, "Failed to clear chat history.")
			return false
		}
		l.history = nil
		fmt.Fprintln(l.out, "Chat history cleared.")

	default:
		fmt.Fprintln(l.out, "Unknown command. Available commands:")
		l.PrintUsage()
	}
	return false
}

// PrintUsage lists the available slash-commands.
func (l *Loop) PrintUsage() {
	fmt.Fprintln(l.out, "  /search <query> - Search memories")
	fmt.Fprintln(l.out, "  /profile - View user profile")
	fmt.Fprintln(l.out, "  /clear - Clear chat history")
	fmt.Fprintln(l.out, "  /exit - Exit the chat")
}

// printRecords prints search results, best match first.
func (l *Loop) printRecords(records []memory.Record) {
	if len(records) == 0 {
		fmt.Fprintln(l.out, "No memories found.")
		return
	}

	fmt.Fprintln(l.out, "\nRelevant Memories:")
	for i, rec := range records {
		fmt.Fprintf(l.out, "\n%d. Content: %s\n", i+1, rec.Content)
		if role, ok := rec.Metadata["role"]; ok {
			fmt.Fprintf(l.out, "   Role: %s\n", role)
		}
		fmt.Fprintf(l.out, "   Created: %s\n", rec.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(l.out, "   Relevance: %.2f\n", rec.Score)
	}
}

// printProfile prints the user's recent memories.
func (l *Loop) printProfile(records []memory.Record) {
	fmt.Fprintln(l.out, "\nUser Profile:")
	if len(records) == 0 {
		fmt.Fprintln(l.out, "No recent memories found.")
		return
	}

	fmt.Fprintln(l.out, "\nRecent Memories:")
	for i, rec := range records {
		fmt.Fprintf(l.out, "\n%d. Content: %s\n", i+1, rec.Content)
		if role, ok := rec.Metadata["role"]; ok {
			fmt.Fprintf(l.out, "   Role: %s\n", role)
		}
		fmt.Fprintf(l.out, "   Created: %s\n", rec.CreatedAt.Format(time.RFC3339))
	}
}

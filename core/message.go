package core

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Messages are immutable once created;
// the chat loop appends them to its conversation buffer and forwards
// them to the memory manager for persistence.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// SystemMessage creates a system-role message.
func SystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// AssistantMessage creates an assistant-role message.
func AssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

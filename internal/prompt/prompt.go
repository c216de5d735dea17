// Package prompt turns a context block and a conversation history into the
// ordered message list sent to the completion endpoint.
package prompt

import "github.com/MikeSquared-Agency/joey/internal/conversation"

// Role is the outbound role of a prompt entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Default personas for the two gateway modes.
const (
	DefaultContextPersona = "You are JoeyLLM, an AI assistant. Use the following documents and webpages to answer questions:\n"
	DefaultPlainPersona   = "You are JoeyLLM, an assistant developed by Southern Cross AI."
)

// Entry is a single role-tagged prompt message.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Builder assembles prompts. With ContextAware set, the context block is
// appended to Persona; otherwise it is ignored. WindowSize <= 0 sends the
// entire history.
type Builder struct {
	Persona      string
	ContextAware bool
	WindowSize   int
}

// Build returns the system entry followed by the last WindowSize messages
// of history in chronological order. history is not modified.
func (b Builder) Build(contextBlock string, history []conversation.Message) []Entry {
	system := b.Persona
	if b.ContextAware {
		system += contextBlock
	}

	window := Window(history, b.WindowSize)
	entries := make([]Entry, 0, len(window)+1)
	entries = append(entries, Entry{Role: RoleSystem, Content: system})
	for _, msg := range window {
		entries = append(entries, Entry{Role: MapRole(msg.Role), Content: msg.Text})
	}
	return entries
}

// Window returns the trailing size messages of history, or all of them
// when size <= 0 or history is shorter.
func Window(history []conversation.Message, size int) []conversation.Message {
	if size <= 0 || len(history) <= size {
		return history
	}
	return history[len(history)-size:]
}

// MapRole converts a conversation role to its outbound role.
func MapRole(r conversation.Role) Role {
	if r == conversation.User {
		return RoleUser
	}
	return RoleAssistant
}

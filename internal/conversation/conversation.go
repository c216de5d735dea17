// Package conversation defines the chat history exchanged with clients.
package conversation

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a message. Only two values exist.
type Role int

const (
	User Role = iota + 1
	Assistant
)

// Wire values accepted in the "from" field.
const (
	wireUser      = "user"
	wireLLM       = "llm"
	wireAssistant = "assistant"
)

// ValidationError reports input rejected at the request boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseRole maps a wire value to a Role. "llm" and "assistant" are both
// assistant turns; anything else is rejected.
func ParseRole(s string) (Role, error) {
	switch s {
	case wireUser:
		return User, nil
	case wireLLM, wireAssistant:
		return Assistant, nil
	default:
		return 0, &ValidationError{Field: "from", Reason: fmt.Sprintf("unknown role %q (expected \"user\" or \"llm\")", s)}
	}
}

// String returns the wire value the frontend uses for the role.
func (r Role) String() string {
	switch r {
	case User:
		return wireUser
	case Assistant:
		return wireLLM
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Message is a single conversation turn.
type Message struct {
	Role Role
	Text string
}

type wireMessage struct {
	From string  `json:"from"`
	Text *string `json:"text"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	text := m.Text
	return json.Marshal(wireMessage{From: m.Role.String(), Text: &text})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	role, err := ParseRole(w.From)
	if err != nil {
		return err
	}
	if w.Text == nil {
		return &ValidationError{Field: "text", Reason: "field required"}
	}
	m.Role = role
	m.Text = *w.Text
	return nil
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// UnmarshalJSON requires the messages field. An empty list is allowed.
func (c *ChatRequest) UnmarshalJSON(data []byte) error {
	var w struct {
		Messages *[]Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Messages == nil {
		return &ValidationError{Field: "messages", Reason: "field required"}
	}
	c.Messages = *w.Messages
	return nil
}

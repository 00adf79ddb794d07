package llm

import (
	"encoding/json"

	"github.com/samber/lo"
)

// Role identifies the author of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in a conversation history.
// Messages are plain values: construct one, then treat it as read-only so it
// can be safely reused and cached across calls.
type Message struct {
	Role    Role
	Content string
	// Name is optional and useful for multi-agent or tool responses.
	Name string
	// Metadata holds provider-specific extras (e.g. token counts). It is
	// never sent on the wire by the base formatter.
	Metadata map[string]any
}

// NewMessage creates a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
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

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role     Role           `json:"role"`
		Content  string         `json:"content"`
		Name     string         `json:"name,omitempty"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{m.Role, m.Content, m.Name, m.Metadata})
}

// WireMessage is the {role, content} pair expected by chat-completion APIs.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatMessages converts conversation messages into their wire shape,
// preserving order exactly. Name and Metadata are dropped; they are not part
// of the base wire contract.
func FormatMessages(messages []Message) []WireMessage {
	return lo.Map(messages, func(m Message, _ int) WireMessage {
		return WireMessage{Role: string(m.Role), Content: m.Content}
	})
}

// Usage holds token accounting for a single completion.
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Response is the normalized result of a chat completion, independent of
// which provider produced it.
type Response struct {
	Content string `json:"content"`
	Role    Role   `json:"role"`
	Usage   Usage  `json:"token_usage"`
	// Raw keeps the original provider payload for debugging. It is excluded
	// from any serialized view.
	Raw any `json:"-"`
}

// Request is the provider-facing request shape: a model, the ordered wire
// messages, and the fully resolved parameter set.
type Request struct {
	Model    string
	Messages []WireMessage
	Config   RequestConfig
}

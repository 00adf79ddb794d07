package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageConstructors(t *testing.T) {
	msg := SystemMessage("You are helpful.")
	if msg.Role != RoleSystem {
		t.Errorf("Expected role %v, got %v", RoleSystem, msg.Role)
	}
	if msg.Content != "You are helpful." {
		t.Errorf("Expected content to round-trip, got %q", msg.Content)
	}

	if UserMessage("hi").Role != RoleUser {
		t.Error("Expected user role")
	}
	if AssistantMessage("hi").Role != RoleAssistant {
		t.Error("Expected assistant role")
	}
	custom := NewMessage(RoleTool, "result")
	if custom.Role != RoleTool || custom.Content != "result" {
		t.Errorf("Unexpected message: %+v", custom)
	}
}

func TestFormatMessagesPreservesOrder(t *testing.T) {
	messages := []Message{
		SystemMessage("S"),
		UserMessage("U"),
	}

	wire := FormatMessages(messages)
	if len(wire) != 2 {
		t.Fatalf("Expected 2 wire messages, got %d", len(wire))
	}
	if wire[0].Role != "system" || wire[0].Content != "S" {
		t.Errorf("Expected first wire message {system, S}, got %+v", wire[0])
	}
	if wire[1].Role != "user" || wire[1].Content != "U" {
		t.Errorf("Expected second wire message {user, U}, got %+v", wire[1])
	}
}

func TestFormatMessagesDropsNameAndMetadata(t *testing.T) {
	msg := Message{
		Role:     RoleUser,
		Content:  "hello",
		Name:     "agent-7",
		Metadata: map[string]any{"tokens": 3},
	}

	wire := FormatMessages([]Message{msg})
	data, err := json.Marshal(wire[0])
	if err != nil {
		t.Fatalf("Failed to marshal wire message: %v", err)
	}
	if strings.Contains(string(data), "agent-7") || strings.Contains(string(data), "tokens") {
		t.Errorf("Expected name and metadata to be dropped, got %s", data)
	}
}

func TestResponseExcludesRawFromJSON(t *testing.T) {
	resp := Response{
		Content: "hello",
		Role:    RoleAssistant,
		Usage:   Usage{Input: 10, Output: 20, Total: 30},
		Raw:     map[string]any{"secret_internal": true},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	if strings.Contains(string(data), "secret_internal") {
		t.Errorf("Expected raw payload to be excluded, got %s", data)
	}
	if !strings.Contains(string(data), `"token_usage"`) {
		t.Errorf("Expected token usage in serialized response, got %s", data)
	}
}

func TestMessageToJSON(t *testing.T) {
	msg := UserMessage("hello")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded["role"] != "user" || decoded["content"] != "hello" {
		t.Errorf("Unexpected JSON: %s", data)
	}
}

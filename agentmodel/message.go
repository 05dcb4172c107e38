// Package agentmodel defines the typed message, tool-call, memory, and
// agent-configuration values shared by the storage contract, the LLM
// streaming activity, and the workflow. Values are validated at
// construction; construction failures are always *agentcoreerr.Error of
// kind KindInvalidInput.
package agentmodel

import (
	"encoding/json"
	"strings"

	"github.com/trussdev/agentcore/agentcoreerr"
)

// Role identifies the speaker of a Message. Role values are case-sensitive.
type Role string

const (
	// RoleSystem is the role for the agent's system prompt.
	RoleSystem Role = "system"
	// RoleUser is the role for the human turn.
	RoleUser Role = "user"
	// RoleAssistant is the role for model-generated turns.
	RoleAssistant Role = "assistant"
	// RoleTool is the role for a tool result fed back to the model.
	RoleTool Role = "tool"
)

// Message is a single chat message. Exactly one invariant set from spec.md
// §3 holds depending on Role:
//
//   - tool:      ToolCallID is non-empty and Content is set.
//   - assistant: at least one of Content, ToolCalls is set.
//   - system/user: Content is set, ToolCalls/ToolCallID are empty.
type Message struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// NewMessage validates and constructs a Message. Unknown roles or a
// violated per-role invariant return a KindInvalidInput error.
func NewMessage(role Role, content *string, toolCalls []ToolCall, toolCallID string) (Message, error) {
	m := Message{Role: role, Content: content, ToolCalls: toolCalls, ToolCallID: toolCallID}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks the per-role invariants from spec.md §3.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if m.Content == nil {
			return agentcoreerr.New(agentcoreerr.KindInvalidInput, "%s message requires content", m.Role)
		}
		if len(m.ToolCalls) != 0 || m.ToolCallID != "" {
			return agentcoreerr.New(agentcoreerr.KindInvalidInput, "%s message must not carry tool fields", m.Role)
		}
	case RoleAssistant:
		if m.Content == nil && len(m.ToolCalls) == 0 {
			return agentcoreerr.New(agentcoreerr.KindInvalidInput, "assistant message requires content or tool_calls")
		}
	case RoleTool:
		if m.ToolCallID == "" {
			return agentcoreerr.New(agentcoreerr.KindInvalidInput, "tool message requires tool_call_id")
		}
		if m.Content == nil {
			return agentcoreerr.New(agentcoreerr.KindInvalidInput, "tool message requires content")
		}
	default:
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "unknown role %q", m.Role)
	}
	return nil
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID is unique within the assistant turn; assigned by the provider stream
	// or synthesised at accumulation time (see package llm).
	ID string `json:"id"`
	// Name is the registered tool name.
	Name string `json:"name"`
	// Arguments is the JSON-compatible argument map supplied by the model.
	Arguments map[string]any `json:"arguments"`
}

// NewToolCall validates and constructs a ToolCall.
func NewToolCall(id, name string, arguments map[string]any) (ToolCall, error) {
	if strings.TrimSpace(id) == "" {
		return ToolCall{}, agentcoreerr.New(agentcoreerr.KindInvalidInput, "tool call id is required")
	}
	if strings.TrimSpace(name) == "" {
		return ToolCall{}, agentcoreerr.New(agentcoreerr.KindInvalidInput, "tool call name is required")
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	return ToolCall{ID: id, Name: name, Arguments: arguments}, nil
}

// ToolCallResult is the output of one tool dispatch, correlated back to its
// ToolCall by ID. Content may originate as a string or a structured JSON
// value; CanonicalContent always renders it to a string suitable for
// storage as a tool-role Message's Content.
type ToolCallResult struct {
	ToolCallID string `json:"tool_call_id"`
	// Content holds either a string or any JSON-marshalable value. Use
	// CanonicalContent to obtain the string form persisted to storage.
	Content any `json:"content"`
}

// CanonicalContent renders Content to its string form. String values pass
// through unchanged; everything else is JSON-encoded.
func (r ToolCallResult) CanonicalContent() (string, error) {
	if s, ok := r.Content.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(r.Content)
	if err != nil {
		return "", agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "tool call result content is not serialisable")
	}
	return string(b), nil
}

// AgentMemory is an ordered, non-empty sequence of Message values
// reconstructed from persisted run-steps in creation order.
type AgentMemory struct {
	Messages []Message
}

// NewAgentMemory validates that messages is non-empty and every element is
// individually valid.
func NewAgentMemory(messages []Message) (AgentMemory, error) {
	if len(messages) == 0 {
		return AgentMemory{}, agentcoreerr.New(agentcoreerr.KindInvalidInput, "agent memory must not be empty")
	}
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return AgentMemory{}, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "message %d invalid", i)
		}
	}
	return AgentMemory{Messages: messages}, nil
}

// strPtr is a small helper used by callers constructing Message literals
// that need a *string for Content.
func strPtr(s string) *string { return &s }

// StringContent is an exported helper (same behavior as strPtr) so callers
// outside this package can build Content pointers without a throwaway local.
func StringContent(s string) *string { return strPtr(s) }

package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation roles. Synthetic retry prompts inserted by the orchestrator
// carry RoleUser so models treat them as user input.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Message is one entry of the append-only conversation log. After emission it
// should be treated as immutable. Content is an ordered list of heterogeneous
// parts; helper methods flatten the common projections (text, tool calls,
// tool results).
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a unique identifier used for messages and sessions.
func NewID() string { return uuid.NewString() }

// NewMessage creates a bare message with the given role.
func NewMessage(role string) Message {
	return Message{ID: NewID(), Role: role, Timestamp: time.Now().UTC()}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	m := NewMessage(RoleUser)
	m.Parts = []Part{TextPart{Text: text}}
	return m
}

// NewAssistantMessage creates an assistant text message.
func NewAssistantMessage(text string) Message {
	m := NewMessage(RoleAssistant)
	m.Parts = []Part{TextPart{Text: text}}
	return m
}

// NewToolCallMessage creates an assistant message requesting the given tool calls.
func NewToolCallMessage(calls ...ToolCall) Message {
	m := NewMessage(RoleAssistant)
	for _, c := range calls {
		m.Parts = append(m.Parts, ToolCallPart{Call: c})
	}
	return m
}

// NewToolResultMessage records the outcome of a previously requested tool call.
// If err is non-nil the result is marked as an error and carries the error
// text so the model can correct its input.
func NewToolResultMessage(callID, name, content string, err error) Message {
	m := NewMessage(RoleTool)
	res := ToolResult{CallID: callID, Name: name, Content: content}
	if err != nil {
		res.IsError = true
		if res.Content == "" {
			res.Content = err.Error()
		}
	}
	m.Parts = []Part{ToolResultPart{Result: res}}
	return m
}

// Text returns the concatenated text of all text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns any tool call parts preserving their original order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.Call)
		}
	}
	return calls
}

// ToolResults returns any tool result parts preserving their original order.
func (m Message) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.Result)
		}
	}
	return results
}

// Valid reports whether an assistant message constitutes a usable turn: it
// must carry at least one tool call or non-blank text. Structured content
// with no text (a bare DataPart) is not usable and triggers the invalid
// output retry loop.
func (m Message) Valid() bool {
	if len(m.ToolCalls()) > 0 {
		return true
	}
	return strings.TrimSpace(m.Text()) != ""
}

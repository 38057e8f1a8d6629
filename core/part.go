package core

// Part represents a polymorphic segment of role-based message content.
// Concrete part types implement the unexported isPart marker enabling a
// closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// DataPart is a structured data segment (e.g., a JSON object map). Models
// occasionally emit structured content carrying no usable text; the validity
// check in Message.Valid treats such messages as empty.
type DataPart struct {
	Data map[string]any // Structured key/value payload
}

// isPart implements the Part interface for DataPart.
func (DataPart) isPart() {}

// ToolCall describes a tool invocation requested by an assistant message.
type ToolCall struct {
	ID        string `json:"id"`                  // Stable id linking the call to its result
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	Call ToolCall
}

// isPart implements the Part interface for ToolCallPart.
func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a tool call. IsError marks results the
// executor synthesized from a failed invocation; the owning assistant sees
// them as ordinary tool output and may retry with corrected arguments.
type ToolResult struct {
	CallID  string `json:"call_id"`         // Matches the originating ToolCall ID
	Name    string `json:"name"`            // Tool name
	Content string `json:"content"`         // Result text surfaced to the model
	IsError bool   `json:"error,omitempty"` // Set when the result describes a failure
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	Result ToolResult
}

// isPart implements the Part interface for ToolResultPart.
func (ToolResultPart) isPart() {}

package core

// Intent is the closed set of things an assistant message can ask the
// orchestrator to do, decoded exactly once from the raw model output.
// Routers switch over these variants instead of re-matching tool name
// strings at every decision point.
type Intent interface{ isIntent() }

// Reply is a plain conversational answer; the turn ends and control returns
// to the user.
type Reply struct {
	Text string
}

func (Reply) isIntent() {}

// HandOff is a dispatcher-issued request to transfer control to a named
// specialist. CallID links the request to the acknowledging tool result the
// entry transition emits.
type HandOff struct {
	CallID string
	Target string
}

func (HandOff) isIntent() {}

// Escalate is a specialist-issued request to return control to the
// dispatcher (task complete, or out of scope).
type Escalate struct {
	CallID string
	Reason string
	Cancel bool
}

func (Escalate) isIntent() {}

// ToolRequest asks for execution of one or more domain tool calls. Sensitive
// is set when any call in the batch names a sensitive tool; the whole batch
// then requires human approval before execution.
type ToolRequest struct {
	Calls     []ToolCall
	Sensitive bool
}

func (ToolRequest) isIntent() {}

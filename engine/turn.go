package engine

import "github.com/seybold/bankdesk/core"

// Turn is the outcome of advancing a session: the messages produced during
// the call, the final reply when the turn completed, and suspension details
// when the graph stopped at a sensitive tool boundary.
type Turn struct {
	SessionID string

	// Messages appended to the conversation during this call, in order.
	Messages []core.Message

	// Reply is the assistant's final text for a completed turn; empty when
	// the session is suspended.
	Reply string

	// Suspended reports that the engine stopped before executing sensitive
	// tool calls and now awaits Approve or Reject.
	Suspended bool

	// PendingNode names the suspended sensitive node, e.g.
	// "sensitive_tools:trading_assistant".
	PendingNode string

	// PendingCalls are the tool calls queued behind the approval gate.
	PendingCalls []core.ToolCall
}

// Pending describes a session's suspension state as exposed to the approval
// channel.
type Pending struct {
	Node  string
	Agent string
	Calls []core.ToolCall
}

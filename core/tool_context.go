package core

import (
	"context"

	"github.com/seybold/bankdesk/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked by an agent: the request context, the originating
// call id for correlation, the session identity and the user context
// snapshot. Tools never receive the conversation itself.
type ToolContext struct {
	ctx     context.Context
	callID  string
	agent   string
	session *SessionContext
	user    UserContext
	logger  logging.Logger
}

// NewToolContext constructs a tool context bound to one tool call.
func NewToolContext(
	ctx context.Context,
	callID, agent string,
	session *SessionContext,
	user UserContext,
	logger logging.Logger,
) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{ctx: ctx, callID: callID, agent: agent, session: session, user: user, logger: logger}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// CallID returns the tool call id associated with the invocation.
func (tc *ToolContext) CallID() string { return tc.callID }

// AgentName returns the name of the agent that requested the call.
func (tc *ToolContext) AgentName() string { return tc.agent }

// SessionID returns the owning session identifier.
func (tc *ToolContext) SessionID() string {
	if tc.session == nil {
		return ""
	}
	return tc.session.SessionID
}

// UserID returns the customer identifier of the owning session.
func (tc *ToolContext) UserID() string {
	if tc.session == nil {
		return ""
	}
	return tc.session.UserID
}

// UserContext returns the resolved customer profile snapshot.
func (tc *ToolContext) UserContext() UserContext { return tc.user }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle misuse. Callers match them with
// errors.Is.
var (
	// ErrUnknownSession is returned when no checkpoint exists for the
	// session id; the session was never opened or has been deleted.
	ErrUnknownSession = errors.New("engine: unknown session")

	// ErrSessionExists is returned by Open for an already opened session.
	ErrSessionExists = errors.New("engine: session already exists")

	// ErrTerminated is returned when advancing a session that has been
	// marked as ended.
	ErrTerminated = errors.New("engine: session terminated")

	// ErrAwaitingApproval is returned by Send while the session is
	// suspended at a sensitive tool boundary; the caller must approve or
	// reject first.
	ErrAwaitingApproval = errors.New("engine: session awaiting approval")

	// ErrNotSuspended is returned by Approve/Reject when no sensitive
	// execution is pending.
	ErrNotSuspended = errors.New("engine: session not suspended")
)

// RouteError reports a fatal routing defect: the model produced output the
// graph cannot route (an unrecognized dispatcher tool name, an entry
// transition with no preceding tool call). The engine aborts the turn rather
// than guess a route.
type RouteError struct {
	Node   string // node where routing failed
	Agent  string // agent boundary
	Reason string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("engine: routing defect at %s (agent %s): %s", e.Node, e.Agent, e.Reason)
}

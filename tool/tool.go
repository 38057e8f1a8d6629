// Package tool implements the function calling subsystem: structured
// capabilities an assistant can invoke with schema validated arguments,
// consistent error handling, and named sets partitioned into safe and
// sensitive tools.
package tool

import (
	"fmt"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/internal/util"
)

// Names of the orchestration pseudo-tools. They are exposed to models like
// ordinary tools but are intercepted by the router (escalation, hand-offs)
// or issued by the engine itself (rejection) and never executed.
const (
	// EscalateToolName is the universal escalation tool every specialist
	// carries: calling it hands the conversation back to the dispatcher.
	EscalateToolName = "complete_or_escalate"

	// RejectionToolName names the pseudo-tool the engine uses to feed a
	// human rejection back to the requesting assistant in place of
	// executing a sensitive call.
	RejectionToolName = "rejection_handler"
)

// Tool defines the interface for extending assistant capabilities with
// external functions.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define proper JSON schema for parameters
//   - Return business-rule rejections (insufficient funds, price out of
//     band) as normal result text, not as errors
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the
	// model so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments are parsed from JSON and validated
	// against the tool's schema before invocation.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

package engine

import (
	"time"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/model"
	"github.com/seybold/bankdesk/tool"
)

// InstructionFunc renders the system instructions for one assistant from the
// resolved user context and the current time.
type InstructionFunc func(uc core.UserContext, now time.Time) string

// HandOff declares a dispatcher tool that transfers control to a named
// specialist. The tool is never executed; the router intercepts it and runs
// the specialist's entry transition instead.
type HandOff struct {
	ToolName    string
	Target      string // specialist assistant name
	Description string
	Parameters  map[string]any
}

// Assistant binds one agent identity to its instructions and its fixed tool
// set. The dispatcher additionally carries hand-off declarations; every
// specialist implicitly carries the universal escalation tool.
type Assistant struct {
	Name        string
	DisplayName string
	Instruction InstructionFunc
	Tools       *tool.Set
	HandOffs    []HandOff
}

// handOffTarget resolves a dispatcher tool name to its specialist target.
func (a *Assistant) handOffTarget(toolName string) (string, bool) {
	for _, h := range a.HandOffs {
		if h.ToolName == toolName {
			return h.Target, true
		}
	}
	return "", false
}

// knowsTool reports whether the name belongs to the assistant's tool surface:
// its executable set, its hand-offs, or the escalation pseudo-tool.
func (a *Assistant) knowsTool(name string) bool {
	if name == tool.EscalateToolName {
		return true
	}
	if _, ok := a.handOffTarget(name); ok {
		return true
	}
	if a.Tools != nil {
		if _, ok := a.Tools.Get(name); ok {
			return true
		}
	}
	return false
}

// declarations builds the tool definitions bound to the model for this
// assistant: executable tools, dispatcher hand-offs and, for specialists,
// the escalation tool.
func (a *Assistant) declarations(dispatcher bool) []model.ToolDefinition {
	var defs []model.ToolDefinition
	if a.Tools != nil {
		for _, t := range a.Tools.List() {
			defs = append(defs, model.ToolDefinition{
				Type: "function",
				Function: model.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
	}
	for _, h := range a.HandOffs {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        h.ToolName,
				Description: h.Description,
				Parameters:  h.Parameters,
			},
		})
	}
	if !dispatcher {
		defs = append(defs, escalateDefinition())
	}
	return defs
}

// escalateDefinition declares the universal escalation tool carried by every
// specialist: mark the current task complete or cancelled and hand control
// back to the primary assistant.
func escalateDefinition() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name: tool.EscalateToolName,
			Description: "Mark the current task as completed and/or hand control of the conversation " +
				"back to the primary assistant, who can reroute based on the user's needs. " +
				"Use this when the request is outside your expertise or the user changes their mind.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cancel": map[string]any{"type": "boolean", "description": "Whether the current task is cancelled"},
					"reason": map[string]any{"type": "string", "description": "Reason for completing or escalating"},
				},
				"required": []string{"reason"},
			},
		},
	}
}

package model

import (
	"context"

	"github.com/seybold/bankdesk/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the engine: the
// resolved instruction text, the conversation so far and the tool
// declarations bound to the active assistant.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the engine needs to drive generation: one
// synchronous invocation producing exactly one assistant message. Identical
// state plus identical tool outputs must be replayable for testing, so
// implementations should avoid hidden per-call state.
type Model interface {
	Invoke(ctx context.Context, req Request) (core.Message, error)

	// Info returns information about the model implementation.
	Info() Info
}

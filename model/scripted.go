package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/seybold/bankdesk/core"
)

// ScriptedModel is a deterministic in-memory Model for tests and demos. It
// replays a fixed queue of assistant messages in order and records every
// request it receives so assertions can inspect what the engine sent.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	script   []core.Message
	pos      int
	requests []Request
}

// NewScriptedModel constructs a ScriptedModel with tool support enabled.
func NewScriptedModel(name string) *ScriptedModel {
	return &ScriptedModel{info: Info{Name: name, Provider: "scripted", SupportsTools: true}}
}

// Enqueue appends assistant messages to the replay queue.
func (m *ScriptedModel) Enqueue(msgs ...core.Message) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, msgs...)
	return m
}

// EnqueueText appends a plain assistant text reply.
func (m *ScriptedModel) EnqueueText(text string) *ScriptedModel {
	return m.Enqueue(core.NewAssistantMessage(text))
}

// EnqueueToolCall appends an assistant message carrying the given tool calls.
func (m *ScriptedModel) EnqueueToolCall(calls ...core.ToolCall) *ScriptedModel {
	return m.Enqueue(core.NewToolCallMessage(calls...))
}

// EnqueueEmpty appends an assistant message with no tool calls and no text,
// exercising the invalid-output retry loop.
func (m *ScriptedModel) EnqueueEmpty() *ScriptedModel {
	return m.Enqueue(core.NewMessage(core.RoleAssistant))
}

// Invoke implements Model; pops the next scripted message. Running past the
// end of the script is a test defect and returns an error.
func (m *ScriptedModel) Invoke(_ context.Context, req Request) (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.pos >= len(m.script) {
		return core.Message{}, fmt.Errorf("scripted model exhausted after %d responses", len(m.script))
	}
	next := m.script[m.pos]
	m.pos++
	// Fresh id per emission so append-merge treats replays as new entries.
	if next.ID == "" {
		next.ID = core.NewID()
	}
	return next, nil
}

// Requests returns a copy of all requests seen so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Remaining reports how many scripted responses are still queued.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script) - m.pos
}

// Info implements the Model interface.
func (m *ScriptedModel) Info() Info { return m.info }

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/seybold/bankdesk/checkpoint"
	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/logging"
	"github.com/seybold/bankdesk/model"
	"github.com/seybold/bankdesk/tool"
)

// Synthetic control message texts. The retry prompt carries the user role
// and stays in the transcript.
const (
	retryPrompt = "Please provide a valid input."

	giveUpReply = "I am sorry, I was not able to process that request. " +
		"Could you please rephrase it and try again?"
)

// UserContextProvider resolves the customer profile snapshot, called exactly
// once per session at Open.
type UserContextProvider interface {
	Fetch(ctx context.Context, userID string) (core.UserContext, error)
}

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Checkpoints persists one record per session; defaults to an
	// in-memory store.
	Checkpoints checkpoint.Store
	// Logger receives node transitions, retries and tool execution logs.
	Logger logging.Logger
	// MaxInvalidRetries bounds the invalid-output retry loop of each agent
	// step. When exhausted the agent gives up with a fixed reply asking
	// the user to rephrase instead of looping forever.
	MaxInvalidRetries int
	// Now supplies the current time to instruction builders; overridable
	// for replayable tests.
	Now func() time.Time
}

// Engine drives the dialogue orchestration graph: one dispatcher, any number
// of specialists, a dialog stack deciding whose turn it is, and a
// checkpoint after every node so a session can suspend at a sensitive tool
// boundary and resume later. A session is a single logical thread of
// control; concurrent calls for the same session are serialized.
type Engine struct {
	model             model.Model
	users             UserContextProvider
	dispatcher        *Assistant
	specialists       map[string]*Assistant
	checkpoints       checkpoint.Store
	logger            logging.Logger
	maxInvalidRetries int
	now               func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New assembles an engine from the dispatcher, its specialists and the model
// binding. Hand-off targets must name registered specialists.
func New(
	m model.Model,
	users UserContextProvider,
	dispatcher *Assistant,
	specialists []*Assistant,
	optFns ...func(o *Options),
) (*Engine, error) {
	if m == nil {
		return nil, errors.New("engine: model is required")
	}
	if users == nil {
		return nil, errors.New("engine: user context provider is required")
	}
	if dispatcher == nil || dispatcher.Name == "" {
		return nil, errors.New("engine: dispatcher is required")
	}

	opts := Options{
		Checkpoints:       checkpoint.NewInMemoryStore(),
		Logger:            logging.NoOpLogger{},
		MaxInvalidRetries: 5,
		Now:               time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	byName := make(map[string]*Assistant, len(specialists))
	for _, s := range specialists {
		if s.Name == "" {
			return nil, errors.New("engine: specialist with empty name")
		}
		if _, dup := byName[s.Name]; dup || s.Name == dispatcher.Name {
			return nil, fmt.Errorf("engine: duplicate assistant name %q", s.Name)
		}
		byName[s.Name] = s
	}
	for _, h := range dispatcher.HandOffs {
		if _, ok := byName[h.Target]; !ok {
			return nil, fmt.Errorf("engine: hand-off %q targets unknown specialist %q", h.ToolName, h.Target)
		}
	}

	return &Engine{
		model:             m,
		users:             users,
		dispatcher:        dispatcher,
		specialists:       byName,
		checkpoints:       opts.Checkpoints,
		logger:            opts.Logger,
		maxInvalidRetries: opts.MaxInvalidRetries,
		now:               opts.Now,
		locks:             make(map[string]*sync.Mutex),
	}, nil
}

// Open creates a session, resolving the user context exactly once. Later
// turns, including resumes after a process restart, reuse the stored
// snapshot and never refetch.
func (e *Engine) Open(ctx context.Context, sessionID, userID string) error {
	unlock := e.lockSession(sessionID)
	defer unlock()

	if _, err := e.checkpoints.Load(ctx, sessionID); err == nil {
		return ErrSessionExists
	} else if !errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("engine: load checkpoint: %w", err)
	}

	uc, err := e.users.Fetch(ctx, userID)
	if err != nil {
		return fmt.Errorf("engine: fetch user context: %w", err)
	}

	conv := core.NewConversation(uc)
	if err := e.save(ctx, sessionID, conv, endNode()); err != nil {
		return err
	}

	e.logger.Info("session.opened", "session_id", sessionID, "user_id", userID)

	return nil
}

// Send delivers one user message and advances the graph until the turn
// completes or suspends. Control enters at the top-of-stack specialist when
// the dialog stack is non-empty, otherwise at the dispatcher.
func (e *Engine) Send(ctx context.Context, sessionID, text string) (*Turn, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	record, conv, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if record.Terminated {
		return nil, ErrTerminated
	}
	next, err := parseNode(record.Next)
	if err != nil {
		return nil, err
	}
	if next.kind == kindSensitiveTools {
		return nil, ErrAwaitingApproval
	}

	baseline := conv.Len()

	active := conv.ActiveAgent()
	if active == "" {
		active = e.dispatcher.Name
	}

	// A checkpoint recording an unexecuted mid-turn node means the process
	// died between saving and running it. Finish that node first so the
	// previous assistant message's tool calls have results before new input
	// enters the transcript.
	switch next.kind {
	case kindSafeTools:
		asst, err := e.assistantFor(next.agent)
		if err != nil {
			return nil, err
		}
		sess := core.NewSessionContext(sessionID, conv.UserContext().UserID)
		e.runToolNode(ctx, sess, conv, asst)
		active = next.agent
	case kindEnter:
		if err := e.runEnterNode(conv, next.agent); err != nil {
			return nil, err
		}
		active = next.agent
	case kindLeaveSkill:
		e.runLeaveSkill(conv)
		active = e.dispatcher.Name
	}

	conv.Append(core.NewUserMessage(text))

	return e.run(ctx, sessionID, conv, agentNode(active), baseline)
}

// Approve resumes a suspended session by executing the queued sensitive tool
// calls and continuing the turn.
func (e *Engine) Approve(ctx context.Context, sessionID string) (*Turn, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	conv, pending, err := e.loadSuspended(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("session.approved", "session_id", sessionID, "node", pending.String())

	return e.run(ctx, sessionID, conv, pending, conv.Len())
}

// Reject resumes a suspended session without executing the queued sensitive
// calls: each pending call receives a synthetic rejection tool result
// carrying the caller's reason, and the requesting assistant re-plans from
// it. The dialog stack is unchanged.
func (e *Engine) Reject(ctx context.Context, sessionID, reason string) (*Turn, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	conv, pending, err := e.loadSuspended(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	last, ok := conv.Last()
	if !ok || len(last.ToolCalls()) == 0 {
		return nil, &RouteError{Node: pending.String(), Agent: pending.agent, Reason: "suspended node has no pending tool calls"}
	}
	baseline := conv.Len()
	for _, call := range last.ToolCalls() {
		content := fmt.Sprintf(
			"The user rejected the tool call, reason is '%s'. The operation was not executed. Address the rejection and re-plan.",
			reason,
		)
		conv.Append(core.NewToolResultMessage(call.ID, tool.RejectionToolName, content, nil))
	}

	e.logger.Info("session.rejected", "session_id", sessionID, "node", pending.String(), "reason", reason)

	return e.run(ctx, sessionID, conv, agentNode(pending.agent), baseline)
}

// Pending reports the suspension state of a session: nil when the session is
// not waiting at a sensitive tool boundary.
func (e *Engine) Pending(ctx context.Context, sessionID string) (*Pending, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	record, conv, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := parseNode(record.Next)
	if err != nil {
		return nil, err
	}
	if next.kind != kindSensitiveTools {
		return nil, nil
	}
	last, _ := conv.Last()
	return &Pending{Node: next.String(), Agent: next.agent, Calls: last.ToolCalls()}, nil
}

// Terminate marks the session as ended. The engine refuses to advance a
// terminated session; the checkpoint is kept for audit until Deleted.
func (e *Engine) Terminate(ctx context.Context, sessionID string) error {
	unlock := e.lockSession(sessionID)
	defer unlock()

	record, err := e.checkpoints.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return ErrUnknownSession
		}
		return fmt.Errorf("engine: load checkpoint: %w", err)
	}
	record.Terminated = true
	if err := e.checkpoints.Save(ctx, record); err != nil {
		return fmt.Errorf("engine: save checkpoint: %w", err)
	}

	e.logger.Info("session.terminated", "session_id", sessionID)

	return nil
}

// ---------------------------------------------------------------------------
// Graph execution

// run advances the graph from cur until the turn ends or suspends,
// checkpointing after every node. baseline marks the conversation length at
// the start of the turn, before the caller appended its inbound messages, so
// the returned Turn carries every message the turn produced.
func (e *Engine) run(ctx context.Context, sessionID string, conv *core.Conversation, cur node, baseline int) (*Turn, error) {
	sess := core.NewSessionContext(sessionID, conv.UserContext().UserID)

	for cur.kind != kindEnd {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.logger.Debug("graph.step", "session_id", sessionID, "node", cur.String())

		switch cur.kind {
		case kindAgent:
			asst, err := e.assistantFor(cur.agent)
			if err != nil {
				return nil, err
			}
			msg, err := e.runAgentNode(ctx, conv, asst)
			if err != nil {
				return nil, err
			}
			intent, err := e.decodeIntent(msg, asst)
			if err != nil {
				return nil, err
			}
			next := route(asst, intent)
			if next.kind == kindSensitiveTools {
				// Suspend exactly before executing the sensitive node.
				if err := e.save(ctx, sessionID, conv, next); err != nil {
					return nil, err
				}
				req := intent.(core.ToolRequest)
				e.logger.Info("session.suspended", "session_id", sessionID, "node", next.String())
				return &Turn{
					SessionID:    sessionID,
					Messages:     conv.Messages()[baseline:],
					Suspended:    true,
					PendingNode:  next.String(),
					PendingCalls: req.Calls,
				}, nil
			}
			cur = next

		case kindEnter:
			if err := e.runEnterNode(conv, cur.agent); err != nil {
				return nil, err
			}
			cur = agentNode(cur.agent)

		case kindSafeTools, kindSensitiveTools:
			asst, err := e.assistantFor(cur.agent)
			if err != nil {
				return nil, err
			}
			e.runToolNode(ctx, sess, conv, asst)
			cur = agentNode(cur.agent)

		case kindLeaveSkill:
			e.runLeaveSkill(conv)
			cur = agentNode(e.dispatcher.Name)
		}

		if err := e.save(ctx, sessionID, conv, cur); err != nil {
			return nil, err
		}
	}

	turn := &Turn{SessionID: sessionID, Messages: conv.Messages()[baseline:]}
	if last, ok := conv.Last(); ok && last.Role == core.RoleAssistant {
		turn.Reply = last.Text()
	}
	return turn, nil
}

// runAgentNode performs one agent step: invoke the bound model and, on
// invalid output (no tool call and empty or unparsable text), append a
// synthetic user prompt and retry. The loop is bounded; exhaustion yields a
// fixed give-up reply so a persistently malformed model cannot spin forever.
// Every iteration appends to the log so the transcript reflects retries.
func (e *Engine) runAgentNode(ctx context.Context, conv *core.Conversation, asst *Assistant) (core.Message, error) {
	instructions := ""
	if asst.Instruction != nil {
		instructions = asst.Instruction(conv.UserContext(), e.now())
	}
	defs := asst.declarations(asst == e.dispatcher)

	for attempt := 0; ; attempt++ {
		req := model.Request{Instructions: instructions, Messages: conv.Messages(), Tools: defs}

		msg, err := e.model.Invoke(ctx, req)
		if err != nil {
			return core.Message{}, fmt.Errorf("engine: model invocation for %s failed: %w", asst.Name, err)
		}
		msg.Role = core.RoleAssistant
		if msg.ID == "" {
			msg.ID = core.NewID()
		}
		conv.Append(msg)

		if msg.Valid() {
			return msg, nil
		}

		if attempt >= e.maxInvalidRetries {
			e.logger.Warn("agent.invalid_output.give_up", "agent", asst.Name, "attempts", attempt+1)
			giveUp := core.NewAssistantMessage(giveUpReply)
			conv.Append(giveUp)
			return giveUp, nil
		}

		e.logger.Debug("agent.invalid_output.retry", "agent", asst.Name, "attempt", attempt+1)
		conv.Append(core.NewUserMessage(retryPrompt))
	}
}

// runEnterNode is the transition invoked when control descends into a
// specialist: it acknowledges the hand-off tool call with an instruction to
// the now-active specialist and pushes the dialog stack. A missing tool call
// on the last message indicates a routing defect upstream and is fatal.
func (e *Engine) runEnterNode(conv *core.Conversation, target string) error {
	asst, ok := e.specialists[target]
	if !ok {
		return &RouteError{Node: enterNode(target).String(), Agent: target, Reason: "unknown specialist"}
	}

	last, ok := conv.Last()
	calls := last.ToolCalls()
	if !ok || len(calls) == 0 {
		return &RouteError{
			Node:   enterNode(target).String(),
			Agent:  target,
			Reason: "entry transition requires a hand-off tool call on the last message",
		}
	}

	content := fmt.Sprintf(
		"The current assistant is now the %s. Review the conversation above between the user and the primary assistant. "+
			"The user's intent is not satisfied yet; use the provided tools to complete the task. "+
			"If the user changes their mind or needs help with tasks beyond your capability, call %s so the primary assistant "+
			"can take over. Do not mention who you are; simply act as the assistant.",
		asst.DisplayName, tool.EscalateToolName,
	)
	conv.Append(core.NewToolResultMessage(calls[0].ID, calls[0].Name, content, nil))
	conv.Push(target)

	e.logger.Info("dialog.enter", "specialist", target, "stack_depth", len(conv.DialogStack()))

	return nil
}

// runLeaveSkill pops at most one dialog stack level and notifies the model
// that control returned to the dispatcher. Popping an empty stack is a
// detected defect handled as a no-op, so repeated escalations can never
// drive the stack depth negative.
func (e *Engine) runLeaveSkill(conv *core.Conversation) {
	if popped, ok := conv.Pop(); ok {
		e.logger.Info("dialog.leave", "specialist", popped, "stack_depth", len(conv.DialogStack()))
	} else {
		e.logger.Warn("dialog.leave.empty_stack")
	}

	last, ok := conv.Last()
	if !ok {
		return
	}
	if calls := last.ToolCalls(); len(calls) > 0 {
		content := "The conversation has been handed back to the primary assistant. " +
			"Review the dialog above and assist the user as required."
		conv.Append(core.NewToolResultMessage(calls[0].ID, calls[0].Name, content, nil))
	}
}

// runToolNode executes the tool calls of the most recent assistant message
// against the assistant's fixed tool set. Every failure, including panics
// and unknown tool names, is caught at this boundary and surfaced to the
// model as a corrective tool result carrying the same call id; the turn is
// never aborted by a tool failure.
func (e *Engine) runToolNode(ctx context.Context, sess *core.SessionContext, conv *core.Conversation, asst *Assistant) {
	last, ok := conv.Last()
	if !ok {
		return
	}

	for _, call := range last.ToolCalls() {
		toolCtx := core.NewToolContext(ctx, call.ID, asst.Name, sess, conv.UserContext(), e.logger)

		start := time.Now()
		result, err := e.executeTool(toolCtx, asst, call)
		e.logger.Info(
			"agent.tool.executed",
			"agent", asst.Name,
			"tool", call.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err != nil,
		)

		if err != nil {
			content := fmt.Sprintf("Error: %v\nPlease correct your input and try again.", err)
			conv.Append(core.NewToolResultMessage(call.ID, call.Name, content, err))
			continue
		}
		conv.Append(core.NewToolResultMessage(call.ID, call.Name, renderResult(result), nil))
	}
}

// executeTool resolves and invokes one tool call with panic recovery.
func (e *Engine) executeTool(toolCtx *core.ToolContext, asst *Assistant, call core.ToolCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
			e.logger.Error("agent.tool.panic", "tool", call.Name, "recover", r, "stack", string(debug.Stack()))
		}
	}()

	if asst.Tools == nil {
		return nil, fmt.Errorf("tool %s not found", call.Name)
	}
	impl, ok := asst.Tools.Get(call.Name)
	if !ok {
		return nil, fmt.Errorf("tool %s not found", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if uerr := json.Unmarshal([]byte(call.Arguments), &args); uerr != nil {
			return nil, fmt.Errorf("failed to unmarshal arguments: %w", uerr)
		}
	}

	return impl.Call(toolCtx, args)
}

// renderResult flattens a tool result into the text surfaced to the model.
func renderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

// ---------------------------------------------------------------------------
// Routing

// decodeIntent classifies the assistant's raw output exactly once into the
// closed intent set. An unrecognized tool name at the dispatcher level is a
// fatal routing defect; specialists surface unknown names in-band through
// the tool executor instead.
func (e *Engine) decodeIntent(msg core.Message, asst *Assistant) (core.Intent, error) {
	calls := msg.ToolCalls()
	if len(calls) == 0 {
		return core.Reply{Text: msg.Text()}, nil
	}

	for _, c := range calls {
		if c.Name == tool.EscalateToolName {
			reason, cancel := parseEscalateArgs(c.Arguments)
			return core.Escalate{CallID: c.ID, Reason: reason, Cancel: cancel}, nil
		}
	}

	if asst == e.dispatcher {
		if target, ok := asst.handOffTarget(calls[0].Name); ok {
			return core.HandOff{CallID: calls[0].ID, Target: target}, nil
		}
		for _, c := range calls {
			if !asst.knowsTool(c.Name) {
				return nil, &RouteError{
					Node:   asst.Name,
					Agent:  asst.Name,
					Reason: fmt.Sprintf("unrecognized tool call %q", c.Name),
				}
			}
		}
	}

	sensitive := asst.Tools != nil && asst.Tools.BatchSensitive(calls)
	return core.ToolRequest{Calls: calls, Sensitive: sensitive}, nil
}

// route maps a decoded intent to the next node. Pure function over the
// closed intent set; every variant has exactly one destination.
func route(asst *Assistant, intent core.Intent) node {
	switch it := intent.(type) {
	case core.Reply:
		return endNode()
	case core.Escalate:
		return leaveNode(asst.Name)
	case core.HandOff:
		return enterNode(it.Target)
	case core.ToolRequest:
		if it.Sensitive {
			return sensitiveNode(asst.Name)
		}
		return safeNode(asst.Name)
	default:
		return endNode()
	}
}

func parseEscalateArgs(arguments string) (reason string, cancel bool) {
	cancel = true
	if arguments == "" {
		return "", cancel
	}
	var parsed struct {
		Cancel *bool  `json:"cancel"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		return arguments, cancel
	}
	if parsed.Cancel != nil {
		cancel = *parsed.Cancel
	}
	return parsed.Reason, cancel
}

// ---------------------------------------------------------------------------
// Persistence helpers

func (e *Engine) assistantFor(name string) (*Assistant, error) {
	if name == "" || name == e.dispatcher.Name {
		return e.dispatcher, nil
	}
	if asst, ok := e.specialists[name]; ok {
		return asst, nil
	}
	return nil, &RouteError{Node: name, Agent: name, Reason: "unknown assistant"}
}

func (e *Engine) load(ctx context.Context, sessionID string) (*checkpoint.Record, *core.Conversation, error) {
	record, err := e.checkpoints.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return nil, nil, ErrUnknownSession
		}
		return nil, nil, fmt.Errorf("engine: load checkpoint: %w", err)
	}
	conv := &core.Conversation{}
	if err := json.Unmarshal(record.Conversation, conv); err != nil {
		return nil, nil, fmt.Errorf("engine: decode conversation: %w", err)
	}
	return record, conv, nil
}

// loadSuspended loads a session and verifies it is parked at a sensitive
// tool boundary.
func (e *Engine) loadSuspended(ctx context.Context, sessionID string) (*core.Conversation, node, error) {
	record, conv, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, node{}, err
	}
	if record.Terminated {
		return nil, node{}, ErrTerminated
	}
	pending, err := parseNode(record.Next)
	if err != nil {
		return nil, node{}, err
	}
	if pending.kind != kindSensitiveTools {
		return nil, node{}, ErrNotSuspended
	}
	return conv, pending, nil
}

func (e *Engine) save(ctx context.Context, sessionID string, conv *core.Conversation, next node) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("engine: encode conversation: %w", err)
	}
	record := &checkpoint.Record{
		SessionID:    sessionID,
		Conversation: data,
		Next:         next.String(),
	}
	if err := e.checkpoints.Save(ctx, record); err != nil {
		return fmt.Errorf("engine: save checkpoint: %w", err)
	}
	return nil
}

// lockSession serializes all operations on one session id.
func (e *Engine) lockSession(sessionID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

package core

import (
	"sync"
	"time"
)

// UserContext is the resolved, read-mostly snapshot of the customer profile
// fetched exactly once at session start. It is owned by the orchestrator and
// never mutated by agents.
type UserContext struct {
	UserID       string    `json:"user_id"`
	GivenName    string    `json:"given_name"`
	Surname      string    `json:"surname"`
	Nationality  string    `json:"nationality"`
	ClientSince  time.Time `json:"client_since"`
	ManagerName  string    `json:"manager_name"`
	SavingsTable string    `json:"savings_table,omitempty"`
}

// Conversation is the shared record threaded through every orchestration
// step: the append-only message log, the user context snapshot and the
// dialog stack tracking which agent currently owns the turn.
//
// Contract:
//   - Append merges new entries order-preserving with by-ID de-duplication
//     (a re-emitted entry replaces the original in place)
//   - Push and Pop are the only permitted dialog stack mutations
//   - reads are consistent snapshots; getters return defensive copies
type Conversation struct {
	mu          sync.RWMutex
	messages    []Message
	index       map[string]int // message id -> position, for append-merge
	userContext UserContext
	dialogStack []string
}

// NewConversation creates an empty conversation bound to the given user
// context snapshot.
func NewConversation(uc UserContext) *Conversation {
	return &Conversation{index: make(map[string]int), userContext: uc}
}

// Append merges messages into the log. Order is preserved; an entry whose ID
// is already present replaces the stored entry instead of being appended
// again. Entries are never removed.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		if pos, ok := c.index[m.ID]; ok && m.ID != "" {
			c.messages[pos] = m
			continue
		}
		c.index[m.ID] = len(c.messages)
		c.messages = append(c.messages, m)
	}
}

// Messages returns a defensive copy of the full message log.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return msgs
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message, or ok=false on an empty log.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// UserContext returns the user context snapshot.
func (c *Conversation) UserContext() UserContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userContext
}

// Push appends an agent identifier to the dialog stack, making it the active
// agent.
func (c *Conversation) Push(agent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogStack = append(c.dialogStack, agent)
}

// Pop removes the top of the dialog stack and returns it. Popping an empty
// stack returns ok=false and leaves the stack untouched; callers treat this
// as a detected defect, never as a panic.
func (c *Conversation) Pop() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.dialogStack) == 0 {
		return "", false
	}
	top := c.dialogStack[len(c.dialogStack)-1]
	c.dialogStack = c.dialogStack[:len(c.dialogStack)-1]
	return top, true
}

// ActiveAgent returns the top of the dialog stack, or "" when the stack is
// empty and control belongs to the dispatcher.
func (c *Conversation) ActiveAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.dialogStack) == 0 {
		return ""
	}
	return c.dialogStack[len(c.dialogStack)-1]
}

// DialogStack returns a defensive copy of the dialog stack, innermost agent
// last.
func (c *Conversation) DialogStack() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stack := make([]string, len(c.dialogStack))
	copy(stack, c.dialogStack)
	return stack
}

// Clone returns a deep copy of the conversation safe for independent
// mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Conversation{
		messages:    make([]Message, len(c.messages)),
		index:       make(map[string]int, len(c.index)),
		userContext: c.userContext,
		dialogStack: make([]string, len(c.dialogStack)),
	}
	copy(clone.messages, c.messages)
	copy(clone.dialogStack, c.dialogStack)
	for k, v := range c.index {
		clone.index[k] = v
	}
	return clone
}

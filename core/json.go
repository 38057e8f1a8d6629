package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Serialization for the Part union and the Conversation snapshot. Checkpoints
// demand round-trip fidelity: a restored conversation must continue exactly
// like the original, so every part type carries an explicit discriminator.

const (
	partTypeText       = "text"
	partTypeData       = "data"
	partTypeToolCall   = "tool_call"
	partTypeToolResult = "tool_result"
)

type partEnvelope struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Data   map[string]any  `json:"data,omitempty"`
	Call   *ToolCall       `json:"call,omitempty"`
	Result *ToolResult     `json:"result,omitempty"`
	Extra  json.RawMessage `json:"-"`
}

func encodePart(p Part) (partEnvelope, error) {
	switch v := p.(type) {
	case TextPart:
		return partEnvelope{Type: partTypeText, Text: v.Text}, nil
	case DataPart:
		return partEnvelope{Type: partTypeData, Data: v.Data}, nil
	case ToolCallPart:
		call := v.Call
		return partEnvelope{Type: partTypeToolCall, Call: &call}, nil
	case ToolResultPart:
		result := v.Result
		return partEnvelope{Type: partTypeToolResult, Result: &result}, nil
	default:
		return partEnvelope{}, fmt.Errorf("core: unknown part type %T", p)
	}
}

func decodePart(env partEnvelope) (Part, error) {
	switch env.Type {
	case partTypeText:
		return TextPart{Text: env.Text}, nil
	case partTypeData:
		return DataPart{Data: env.Data}, nil
	case partTypeToolCall:
		if env.Call == nil {
			return nil, fmt.Errorf("core: tool_call part missing call payload")
		}
		return ToolCallPart{Call: *env.Call}, nil
	case partTypeToolResult:
		if env.Result == nil {
			return nil, fmt.Errorf("core: tool_result part missing result payload")
		}
		return ToolResultPart{Result: *env.Result}, nil
	default:
		return nil, fmt.Errorf("core: unknown part discriminator %q", env.Type)
	}
}

type messageJSON struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Parts     []partEnvelope `json:"parts"`
	Timestamp time.Time      `json:"timestamp"`
}

// MarshalJSON implements json.Marshaler for Message.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{ID: m.ID, Role: m.Role, Timestamp: m.Timestamp}
	for _, p := range m.Parts {
		env, err := encodePart(p)
		if err != nil {
			return nil, err
		}
		out.Parts = append(out.Parts, env)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.ID = in.ID
	m.Role = in.Role
	m.Timestamp = in.Timestamp
	m.Parts = nil
	for _, env := range in.Parts {
		p, err := decodePart(env)
		if err != nil {
			return err
		}
		m.Parts = append(m.Parts, p)
	}
	return nil
}

type conversationJSON struct {
	Messages    []Message   `json:"messages"`
	UserContext UserContext `json:"user_context"`
	DialogStack []string    `json:"dialog_stack"`
}

// MarshalJSON implements json.Marshaler for Conversation.
func (c *Conversation) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := conversationJSON{
		Messages:    c.messages,
		UserContext: c.userContext,
		DialogStack: c.dialogStack,
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Conversation, rebuilding the
// merge index from the restored message log.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var in conversationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = in.Messages
	c.userContext = in.UserContext
	c.dialogStack = in.DialogStack
	c.index = make(map[string]int, len(in.Messages))
	for i, m := range in.Messages {
		c.index[m.ID] = i
	}
	return nil
}

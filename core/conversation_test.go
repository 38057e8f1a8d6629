package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUserContext() UserContext {
	return UserContext{UserID: "AB123", GivenName: "Alice", Surname: "Brennan", ManagerName: "Maria Keller"}
}

func TestConversation_AppendMerge(t *testing.T) {
	c := NewConversation(testUserContext())

	first := NewUserMessage("hello")
	second := NewAssistantMessage("hi, how can I help?")
	c.Append(first, second)
	assert.Equal(t, 2, c.Len())

	// Re-emitting an entry with the same id replaces it in place.
	revised := second
	revised.Parts = []Part{TextPart{Text: "hello again"}}
	c.Append(revised)
	assert.Equal(t, 2, c.Len())

	msgs := c.Messages()
	assert.Equal(t, "hello", msgs[0].Text())
	assert.Equal(t, "hello again", msgs[1].Text())
}

func TestConversation_AppendPreservesOrder(t *testing.T) {
	c := NewConversation(testUserContext())
	for _, text := range []string{"a", "b", "c"} {
		c.Append(NewUserMessage(text))
	}
	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "a", msgs[0].Text())
	assert.Equal(t, "c", msgs[2].Text())
}

func TestConversation_DialogStack(t *testing.T) {
	c := NewConversation(testUserContext())
	assert.Equal(t, "", c.ActiveAgent())

	c.Push("trading_assistant")
	c.Push("account_assistant")
	assert.Equal(t, "account_assistant", c.ActiveAgent())
	assert.Equal(t, []string{"trading_assistant", "account_assistant"}, c.DialogStack())

	top, ok := c.Pop()
	assert.True(t, ok)
	assert.Equal(t, "account_assistant", top)
	assert.Equal(t, "trading_assistant", c.ActiveAgent())
}

func TestConversation_PopEmptyStack(t *testing.T) {
	c := NewConversation(testUserContext())
	// Popping an empty stack is a detected defect, not a panic: depth never
	// goes negative.
	top, ok := c.Pop()
	assert.False(t, ok)
	assert.Equal(t, "", top)
	assert.Empty(t, c.DialogStack())
}

func TestConversation_DefensiveCopies(t *testing.T) {
	c := NewConversation(testUserContext())
	c.Append(NewUserMessage("hello"))
	c.Push("trading_assistant")

	msgs := c.Messages()
	msgs[0] = NewUserMessage("mutated")
	stack := c.DialogStack()
	stack[0] = "mutated"

	assert.Equal(t, "hello", c.Messages()[0].Text())
	assert.Equal(t, "trading_assistant", c.ActiveAgent())
}

func TestConversation_JSONRoundTrip(t *testing.T) {
	c := NewConversation(testUserContext())
	c.Append(
		NewUserMessage("buy some stock"),
		NewToolCallMessage(ToolCall{ID: "call-1", Name: "trade_stock", Arguments: `{"stock":"Adobe"}`}),
		NewToolResultMessage("call-1", "trade_stock", "order submitted", nil),
	)
	c.Push("trading_assistant")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := &Conversation{}
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, c.DialogStack(), restored.DialogStack())
	assert.Equal(t, c.UserContext(), restored.UserContext())
	require.Equal(t, c.Len(), restored.Len())

	orig := c.Messages()
	got := restored.Messages()
	for i := range orig {
		assert.Equal(t, orig[i].ID, got[i].ID)
		assert.Equal(t, orig[i].Role, got[i].Role)
		assert.Equal(t, orig[i].ToolCalls(), got[i].ToolCalls())
		assert.Equal(t, orig[i].ToolResults(), got[i].ToolResults())
		assert.Equal(t, orig[i].Text(), got[i].Text())
	}

	// Append-merge must keep working after a restore.
	revised := got[0]
	revised.Parts = []Part{TextPart{Text: "sell some stock"}}
	restored.Append(revised)
	assert.Equal(t, c.Len(), restored.Len())
	assert.Equal(t, "sell some stock", restored.Messages()[0].Text())
}

func TestMessage_Valid(t *testing.T) {
	assert.True(t, NewAssistantMessage("some text").Valid())
	assert.True(t, NewToolCallMessage(ToolCall{ID: "c1", Name: "check_account_balance"}).Valid())

	empty := NewMessage(RoleAssistant)
	assert.False(t, empty.Valid())

	blank := NewAssistantMessage("   \n")
	assert.False(t, blank.Valid())

	// Structured content whose parts carry no text is not a usable turn.
	structured := NewMessage(RoleAssistant)
	structured.Parts = []Part{DataPart{Data: map[string]any{"citations": []any{}}}}
	assert.False(t, structured.Valid())
}

func TestMessage_Projections(t *testing.T) {
	m := NewMessage(RoleAssistant)
	m.Parts = []Part{
		TextPart{Text: "Placing order. "},
		ToolCallPart{Call: ToolCall{ID: "c1", Name: "trade_stock"}},
		ToolCallPart{Call: ToolCall{ID: "c2", Name: "check_pending_order"}},
	}
	assert.Equal(t, "Placing order. ", m.Text())
	calls := m.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "c1", calls[0].ID)
	assert.Equal(t, "c2", calls[1].ID)
}

func TestSessionContext_Terminate(t *testing.T) {
	sc := NewSessionContext("sess-1", "AB123")
	assert.False(t, sc.Terminated())
	sc.Terminate()
	assert.True(t, sc.Terminated())
}

package checkpoint

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	record := &Record{
		SessionID:    "s1",
		Conversation: json.RawMessage(`{"messages":[]}`),
		Next:         "sensitive_tools:trading_assistant",
	}
	require.NoError(t, store.Save(ctx, record))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, record.SessionID, loaded.SessionID)
	assert.Equal(t, record.Next, loaded.Next)
	assert.JSONEq(t, string(record.Conversation), string(loaded.Conversation))
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestInMemoryStore_LoadUnknown(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Save(ctx, &Record{SessionID: "s1", Conversation: json.RawMessage(`{}`), Next: "a"}))
	require.NoError(t, store.Save(ctx, &Record{SessionID: "s1", Conversation: json.RawMessage(`{}`), Next: "b"}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.Next)
}

func TestInMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	record := &Record{SessionID: "s1", Conversation: json.RawMessage(`{"a":1}`)}
	require.NoError(t, store.Save(ctx, record))

	// Mutating the caller's record must not leak into the store.
	record.Next = "mutated"
	record.Conversation[1] = 'b'

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Next)
	assert.JSONEq(t, `{"a":1}`, string(loaded.Conversation))

	// Nor must mutating a loaded record.
	loaded.Conversation[1] = 'c'
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again.Conversation))
}

func TestInMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Save(ctx, &Record{SessionID: "s1", Conversation: json.RawMessage(`{}`)}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again stays a no-op.
	assert.NoError(t, store.Delete(ctx, "s1"))
}

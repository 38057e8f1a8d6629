package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seybold/bankdesk/checkpoint"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	record := &checkpoint.Record{
		SessionID:    "s1",
		Conversation: json.RawMessage(`{"messages":[{"id":"m1"}],"dialog_stack":["trading_assistant"]}`),
		Next:         "sensitive_tools:trading_assistant",
	}
	require.NoError(t, store.Save(ctx, record))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.SessionID)
	assert.Equal(t, "sensitive_tools:trading_assistant", loaded.Next)
	assert.False(t, loaded.Terminated)
	assert.JSONEq(t, string(record.Conversation), string(loaded.Conversation))
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStore_LoadUnknown(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, &checkpoint.Record{SessionID: "s1", Conversation: json.RawMessage(`{}`), Next: "a"}))
	require.NoError(t, store.Save(ctx, &checkpoint.Record{SessionID: "s1", Conversation: json.RawMessage(`{}`), Next: "", Terminated: true}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Next)
	assert.True(t, loaded.Terminated)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, &checkpoint.Record{SessionID: "s1", Conversation: json.RawMessage(`{}`)}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoints.db")

	store, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, &checkpoint.Record{
		SessionID:    "s1",
		Conversation: json.RawMessage(`{"messages":[]}`),
		Next:         "trading_assistant",
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "trading_assistant", loaded.Next)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	require.Error(t, err)
}

package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/internal/util"
	"github.com/seybold/bankdesk/logging"
)

func testToolCtx() *core.ToolContext {
	sess := core.NewSessionContext("sess-1", "AB123")
	return core.NewToolContext(context.Background(), "call-1", "trading_assistant", sess, core.UserContext{UserID: "AB123"}, logging.NoOpLogger{})
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{"type": "string"},
		},
		"required": []string{"user_id"},
	}
	echo := NewFunctionTool("echo_user", "Echo the user id", params,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["user_id"], nil
		})

	result, err := echo.Call(testToolCtx(), map[string]any{"user_id": "AB123"})
	require.NoError(t, err)
	assert.Equal(t, "AB123", result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "number"},
		},
		"required": []string{"amount"},
	}
	tr := NewFunctionTool("transfer_fund", "Transfer funds", params,
		func(tc *core.ToolContext, args map[string]any) (any, error) { return "ok", nil })

	_, err := tr.Call(testToolCtx(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	_, err = tr.Call(testToolCtx(), map[string]any{"amount": "not-a-number"})
	require.Error(t, err)
	toolErr, ok = err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	boom := NewFunctionTool("boom", "Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("downstream unavailable")
		})

	_, err := boom.Call(testToolCtx(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "downstream unavailable")
}

func TestFunctionTool_PreservesToolError(t *testing.T) {
	custom := NewFunctionTool("custom", "Returns a custom ToolError",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, NewToolError("custom", "quota exceeded", "QUOTA")
		})

	_, err := custom.Call(testToolCtx(), map[string]any{})
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "QUOTA", toolErr.Code)
}

func TestFunctionTool_SchemaFromStruct(t *testing.T) {
	type args struct {
		UserID string   `json:"user_id" description:"The user's id"`
		Limit  *float64 `json:"limit" description:"Optional result limit"`
	}
	ft := NewFunctionToolFromStruct("check_pending_order", "List pending orders", args{},
		func(tc *core.ToolContext, a map[string]any) (any, error) { return nil, nil })

	schema := ft.Parameters()
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "user_id")
	assert.Contains(t, props, "limit")

	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"user_id"}, req)

	// Validation derived from the struct: user_id required.
	err := util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
}

// -------------------- Set Tests --------------------

func staticTool(name string) Tool {
	return NewFunctionTool(name, "test tool",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) { return name, nil })
}

func TestSet_Partition(t *testing.T) {
	s := NewSet("trading_assistant_tools").
		Add(staticTool("search_stock"), staticTool("check_earnings")).
		AddSensitive(staticTool("trade_stock"))

	assert.False(t, s.IsSensitive("search_stock"))
	assert.True(t, s.IsSensitive("trade_stock"))
	assert.False(t, s.IsSensitive("unknown_tool"))

	names := make([]string, 0)
	for _, tl := range s.List() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"search_stock", "check_earnings", "trade_stock"}, names)
}

func TestSet_BatchSensitive(t *testing.T) {
	s := NewSet("trading_assistant_tools").
		Add(staticTool("search_stock")).
		AddSensitive(staticTool("trade_stock"))

	safeBatch := []core.ToolCall{{ID: "1", Name: "search_stock"}}
	assert.False(t, s.BatchSensitive(safeBatch))

	// One sensitive call taints the whole batch.
	mixed := []core.ToolCall{
		{ID: "1", Name: "search_stock"},
		{ID: "2", Name: "trade_stock"},
	}
	assert.True(t, s.BatchSensitive(mixed))
}

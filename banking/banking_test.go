package banking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/tool"
)

var seedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)

func openSeeded(t *testing.T) *Repository {
	t.Helper()
	store, err := Open(context.Background(), Config{
		Path: filepath.Join(t.TempDir(), "banking.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Seed(context.Background(), seedNow))
	return NewRepository(store)
}

func toolContext(t *testing.T) *core.ToolContext {
	t.Helper()
	sess := core.NewSessionContext("s-test", "U1000")
	return core.NewToolContext(context.Background(), "call-1", "tester", sess, core.UserContext{UserID: "U1000"}, nil)
}

func invoke(t *testing.T, set *tool.Set, name string, args map[string]any) string {
	t.Helper()
	impl, ok := set.Get(name)
	require.True(t, ok, "tool %s not registered", name)
	result, err := impl.Call(toolContext(t), args)
	require.NoError(t, err)
	text, ok := result.(string)
	require.True(t, ok, "tool %s returned non-string result", name)
	return text
}

func fixedNow() time.Time { return seedNow }

func TestProvider_Fetch(t *testing.T) {
	repo := openSeeded(t)
	provider := NewProvider(repo)

	uc, err := provider.Fetch(context.Background(), "U1000")
	require.NoError(t, err)
	assert.Equal(t, "Nora", uc.GivenName)
	assert.Equal(t, "Keller", uc.Surname)
	assert.Equal(t, "Daniel Frey", uc.ManagerName)

	_, err = provider.Fetch(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestContactRM_ListAndBook(t *testing.T) {
	repo := openSeeded(t)
	set := PrimaryTools(repo, fixedNow)

	out := invoke(t, set, "contact_rm", map[string]any{})
	assert.Contains(t, out, "pending appointments")

	out = invoke(t, set, "contact_rm", map[string]any{"appointment_date_time": "not-a-date"})
	assert.Contains(t, out, "format is invalid")

	past := seedNow.AddDate(0, 0, -1).Format("2006-01-02 15:04:05")
	out = invoke(t, set, "contact_rm", map[string]any{"appointment_date_time": past})
	assert.Contains(t, out, "in the past")

	tooSoon := seedNow.Add(3 * time.Hour).Format("2006-01-02 15:04:05")
	out = invoke(t, set, "contact_rm", map[string]any{"appointment_date_time": tooSoon})
	assert.Contains(t, out, "at least one day in advance")

	// Seeded appointment is 14 days out at 10:00; an hour later collides.
	conflict := seedNow.AddDate(0, 0, 14)
	conflict = time.Date(conflict.Year(), conflict.Month(), conflict.Day(), 11, 0, 0, 0, conflict.Location())
	out = invoke(t, set, "contact_rm", map[string]any{"appointment_date_time": conflict.Format("2006-01-02 15:04:05")})
	assert.Contains(t, out, "at least 2 hours")

	ok := seedNow.AddDate(0, 0, 3)
	out = invoke(t, set, "contact_rm", map[string]any{"appointment_date_time": ok.Format("2006-01-02 15:04:05")})
	assert.Contains(t, out, "is scheduled at")

	appts, err := repo.Appointments(context.Background(), "U1000")
	require.NoError(t, err)
	assert.Len(t, appts, 2)
}

func TestSearchStock(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "search_stock", map[string]any{"stock": "Adobe"})
	assert.Contains(t, out, "$530.00")
	assert.Contains(t, out, "subscription growth")

	out = invoke(t, set, "search_stock", map[string]any{"stock": "Gazprom"})
	assert.Contains(t, out, "not available in the US stock market")
}

func TestCheckEarnings(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "check_earnings", map[string]any{})
	// 15 Adobe shares remain after the partial sale, plus 30 Nvidia.
	assert.Contains(t, out, "Adobe")
	assert.Contains(t, out, "15 shares")
	assert.Contains(t, out, "Nvidia")
	assert.Contains(t, out, "30 shares")
	assert.Contains(t, out, "total holding value")
}

func TestTradeStock_Buy(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "buy", "volume": 10, "price": 100.0,
	})
	assert.Contains(t, out, "below the permitted threshold")

	out = invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "buy", "volume": 500, "price": 530.0,
	})
	assert.Contains(t, out, "Insufficient funds")

	out = invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "buy", "volume": 10, "price": 525.0,
	})
	assert.Contains(t, out, "Order Confirmation")

	orders, err := repo.PendingOrders(context.Background(), "U1000")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ActionBuy, orders[0].Action)
	assert.Equal(t, 10, orders[0].Volume)
}

func TestTradeStock_Sell(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "sell", "volume": 100, "price": 530.0,
	})
	assert.Contains(t, out, "sufficient quantity")

	out = invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "sell", "volume": 5, "price": 800.0,
	})
	assert.Contains(t, out, "exceeds the allowable limit")

	out = invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "sell", "volume": 5, "price": 540.0,
	})
	assert.Contains(t, out, "Order Confirmation")

	orders, err := repo.PendingOrders(context.Background(), "U1000")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, -5, orders[0].Volume)
}

func TestTradeStock_Validation(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "trade_stock", map[string]any{
		"stock": "Adobe", "action": "short", "volume": 5, "price": 530.0,
	})
	assert.Contains(t, out, "invalid")

	out = invoke(t, set, "trade_stock", map[string]any{
		"stock": "Gazprom", "action": "buy", "volume": 5, "price": 100.0,
	})
	assert.Contains(t, out, "not available in the US stock market")
}

func TestCheckPendingOrder(t *testing.T) {
	repo := openSeeded(t)
	set := TradingTools(repo, fixedNow)

	out := invoke(t, set, "check_pending_order", map[string]any{})
	assert.Contains(t, out, "no pending orders")

	invoke(t, set, "trade_stock", map[string]any{
		"stock": "Nvidia", "action": "buy", "volume": 10, "price": 124.0,
	})
	out = invoke(t, set, "check_pending_order", map[string]any{})
	assert.Contains(t, out, "buy order of 10 shares of Nvidia")
	assert.Contains(t, out, "total pending buy order amount")
}

func TestCheckAccountBalance(t *testing.T) {
	repo := openSeeded(t)
	set := AccountTools(repo, fixedNow)

	out := invoke(t, set, "check_account_balance", map[string]any{})
	assert.Contains(t, out, "$26,135.00")
}

func TestCheckAccountHistory(t *testing.T) {
	repo := openSeeded(t)
	set := AccountTools(repo, fixedNow)

	start := seedNow.AddDate(0, 0, -70).Format("2006-01-02")
	end := seedNow.Format("2006-01-02")
	out := invoke(t, set, "check_account_history", map[string]any{
		"start_date": start, "end_date": end,
	})
	assert.Contains(t, out, "Income overview")
	assert.Contains(t, out, "Expense overview")
	assert.Contains(t, out, "Transfer overview")
	assert.Contains(t, out, "Salary")

	out = invoke(t, set, "check_account_history", map[string]any{
		"start_date": "2001-01-01", "end_date": "2001-02-01",
	})
	assert.Contains(t, out, "No transactions found")

	out = invoke(t, set, "check_account_history", map[string]any{
		"start_date": "yesterday", "end_date": end,
	})
	assert.Contains(t, out, "format is invalid")
}

func TestCheckPendingTransfer(t *testing.T) {
	repo := openSeeded(t)
	set := AccountTools(repo, fixedNow)

	out := invoke(t, set, "check_pending_transfer", map[string]any{})
	assert.Contains(t, out, "$800.00")
	assert.Contains(t, out, "Alpen Bank")
	assert.Contains(t, out, "Total pending transfer amount")
}

func TestTransferFund(t *testing.T) {
	repo := openSeeded(t)
	set := AccountTools(repo, fixedNow)

	out := invoke(t, set, "transfer_fund", map[string]any{
		"amount": 100.0, "recipient_account": "X", "recipient_bank": "Y",
		"transfer_date": seedNow.AddDate(0, 0, -1).Format("2006-01-02"),
	})
	assert.Contains(t, out, "today or a future date")

	out = invoke(t, set, "transfer_fund", map[string]any{
		"amount": 5000.0, "recipient_account": "X", "recipient_bank": "Y",
		"transfer_date": seedNow.Format("2006-01-02"),
	})
	assert.Contains(t, out, "maximum allowable amount")

	out = invoke(t, set, "transfer_fund", map[string]any{
		"amount": -5.0, "recipient_account": "X", "recipient_bank": "Y",
		"transfer_date": seedNow.Format("2006-01-02"),
	})
	assert.Contains(t, out, "appropriate transfer amount")

	out = invoke(t, set, "transfer_fund", map[string]any{
		"amount": 2500.0, "recipient_account": "CH12-3456", "recipient_bank": "Alpen Bank",
		"transfer_date": seedNow.AddDate(0, 0, 2).Format("2006-01-02"),
	})
	assert.Contains(t, out, "successfully scheduled")
	assert.Contains(t, out, "sufficient funds are available in your account on the scheduled transfer date")

	transfers, err := repo.PendingTransfers(context.Background(), "U1000")
	require.NoError(t, err)
	assert.Len(t, transfers, 2)
}

func TestSensitivePartition(t *testing.T) {
	repo := openSeeded(t)

	trading := TradingTools(repo, fixedNow)
	assert.True(t, trading.IsSensitive("trade_stock"))
	assert.False(t, trading.IsSensitive("search_stock"))

	account := AccountTools(repo, fixedNow)
	assert.True(t, account.IsSensitive("transfer_fund"))
	assert.False(t, account.IsSensitive("check_account_balance"))
}

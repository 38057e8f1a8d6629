package assistant

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seybold/bankdesk/banking"
	"github.com/seybold/bankdesk/core"
)

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	store, err := banking.Open(context.Background(), banking.Config{
		Path: filepath.Join(t.TempDir(), "banking.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return Dependencies{
		Repo: banking.NewRepository(store),
		Now:  func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestAll_WiresPersonas(t *testing.T) {
	dispatcher, specialists := All(testDeps(t))

	assert.Equal(t, PrimaryName, dispatcher.Name)
	require.Len(t, dispatcher.HandOffs, 3)

	targets := map[string]bool{}
	for _, h := range dispatcher.HandOffs {
		targets[h.Target] = true
	}
	for _, s := range specialists {
		assert.True(t, targets[s.Name], "specialist %s has no hand-off", s.Name)
	}
}

func TestPrimary_Tools(t *testing.T) {
	primary := Primary(testDeps(t))

	_, ok := primary.Tools.Get("contact_rm")
	assert.True(t, ok)
	assert.False(t, primary.Tools.IsSensitive("contact_rm"))
}

func TestSpecialists_SensitiveGating(t *testing.T) {
	deps := testDeps(t)

	trading := Trading(deps)
	assert.True(t, trading.Tools.IsSensitive("trade_stock"))
	assert.False(t, trading.Tools.IsSensitive("search_stock"))

	account := Account(deps)
	assert.True(t, account.Tools.IsSensitive("transfer_fund"))
	assert.False(t, account.Tools.IsSensitive("check_account_balance"))

	digital := DigitalBanking(deps)
	_, ok := digital.Tools.Get("lookup_digital_banking_faq")
	assert.True(t, ok)
	assert.False(t, digital.Tools.IsSensitive("lookup_digital_banking_faq"))
}

func TestInstructions_RenderUserContext(t *testing.T) {
	uc := core.UserContext{
		UserID:      "U1000",
		GivenName:   "Nora",
		Surname:     "Keller",
		Nationality: "CH",
		ClientSince: time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		ManagerName: "Daniel Frey",
	}
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	text := primaryInstruction(uc, now)
	assert.Contains(t, text, "Nora")
	assert.Contains(t, text, "Daniel Frey")
	assert.Contains(t, text, "to_trading_assistant")
	assert.Contains(t, text, "September 1, 2026")

	text = tradingInstruction(uc, now)
	assert.Contains(t, text, "complete_or_escalate")
	assert.Contains(t, text, "trade_stock")

	text = accountInstruction(uc, now)
	assert.Contains(t, text, "transfer_fund")

	text = digitalBankingInstruction(uc, now)
	assert.Contains(t, text, "lookup_digital_banking_faq")
}

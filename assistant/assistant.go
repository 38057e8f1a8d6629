// Package assistant defines the banking personas: the primary dispatcher
// and the trading, account and digital banking specialists, each bound to
// the tool sets from the banking and faq packages.
package assistant

import (
	"time"

	"github.com/seybold/bankdesk/banking"
	"github.com/seybold/bankdesk/engine"
	"github.com/seybold/bankdesk/faq"
	"github.com/seybold/bankdesk/tool"
)

// Specialist names. The engine routes hand-offs to these.
const (
	PrimaryName        = "primary_assistant"
	TradingName        = "trading_assistant"
	AccountName        = "account_assistant"
	DigitalBankingName = "digital_banking_assistant"
)

// Dependencies is everything the personas need to build their tool sets.
type Dependencies struct {
	Repo *banking.Repository
	FAQ  *faq.Corpus
	Now  func() time.Time
}

// All assembles the dispatcher and its specialists.
func All(deps Dependencies) (dispatcher *engine.Assistant, specialists []*engine.Assistant) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Primary(deps), []*engine.Assistant{
		Trading(deps),
		Account(deps),
		DigitalBanking(deps),
	}
}

// Primary is the dispatcher: it handles relationship manager scheduling
// itself and delegates everything else through hand-off tools.
func Primary(deps Dependencies) *engine.Assistant {
	return &engine.Assistant{
		Name:        PrimaryName,
		DisplayName: "Primary Assistant",
		Instruction: primaryInstruction,
		Tools:       banking.PrimaryTools(deps.Repo, deps.Now),
		HandOffs: []engine.HandOff{
			{
				ToolName: "to_trading_assistant",
				Target:   TradingName,
				Description: "Transfer the conversation to the assistant handling trading of stocks, " +
					"equities and shares: market prices, analysis, earnings, pending orders and placing orders.",
				Parameters: handOffParameters("The user's trading request to act on"),
			},
			{
				ToolName: "to_account_assistant",
				Target:   AccountName,
				Description: "Transfer the conversation to the assistant handling the savings account: " +
					"balance, transaction history, pending transfers and making transfers.",
				Parameters: handOffParameters("The user's savings account request to act on"),
			},
			{
				ToolName: "to_digital_banking_assistant",
				Target:   DigitalBankingName,
				Description: "Transfer the conversation to the assistant handling digital banking usage: " +
					"e-banking and mobile app features, documents, fees, security and settings.",
				Parameters: handOffParameters("The user's digital banking question"),
			},
		},
	}
}

// Trading handles stock research and day-limit orders; trade_stock is
// approval gated.
func Trading(deps Dependencies) *engine.Assistant {
	return &engine.Assistant{
		Name:        TradingName,
		DisplayName: "Trading Assistant",
		Instruction: tradingInstruction,
		Tools:       banking.TradingTools(deps.Repo, deps.Now),
	}
}

// Account handles the savings account; transfer_fund is approval gated.
func Account(deps Dependencies) *engine.Assistant {
	return &engine.Assistant{
		Name:        AccountName,
		DisplayName: "Account Assistant",
		Instruction: accountInstruction,
		Tools:       banking.AccountTools(deps.Repo, deps.Now),
	}
}

// DigitalBanking answers e-banking and mobile app questions from the FAQ
// corpus.
func DigitalBanking(deps Dependencies) *engine.Assistant {
	corpus := deps.FAQ
	if corpus == nil {
		// The embedded corpus always parses.
		corpus, _ = faq.Default()
	}
	set := tool.NewSet("digital_banking")
	set.Add(faq.NewLookupTool(corpus))
	return &engine.Assistant{
		Name:        DigitalBankingName,
		DisplayName: "Digital Banking Assistant",
		Instruction: digitalBankingInstruction,
		Tools:       set,
	}
}

func handOffParameters(requestDesc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"request": map[string]any{
				"type":        "string",
				"description": requestDesc,
			},
		},
		"required": []string{"request"},
	}
}

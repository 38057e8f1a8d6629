package banking

import (
	"fmt"
	"strings"
	"time"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/tool"
)

// transferLimit caps a single chatbot-initiated transfer.
const transferLimit = 3000.0

// AccountTools builds the account assistant's tool set. transfer_fund is
// sensitive and runs only after human approval.
func AccountTools(repo *Repository, now func() time.Time) *tool.Set {
	set := tool.NewSet("account")
	set.Add(
		newCheckBalanceTool(repo),
		newCheckHistoryTool(repo),
		newCheckPendingTransferTool(repo),
	)
	set.AddSensitive(newTransferFundTool(repo, now))
	return set
}

func newCheckBalanceTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"check_account_balance",
		"Check the balance of the user's savings account.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasSavings {
				return "The user has no saving account with the bank.", nil
			}

			balance, err := repo.LatestBalance(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Your saving account balance is %s.", money(balance)), nil
		},
	)
}

// periodStats aggregates one transaction category over a queried period.
type periodStats struct {
	total   float64
	highest *AccountEntry
	lowest  *AccountEntry
}

func newCheckHistoryTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"check_account_history",
		"Check the transaction history of the user's savings account over a date range, "+
			"summarizing income, expenses and transfers.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_date": map[string]any{
					"type":        "string",
					"description": "Start date of the history, format 'YYYY-MM-DD'",
				},
				"end_date": map[string]any{
					"type":        "string",
					"description": "End date of the history, format 'YYYY-MM-DD'",
				},
			},
			"required": []string{"start_date", "end_date"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasSavings {
				return "The user has no saving account with the bank.", nil
			}

			start, err := time.ParseInLocation(dateLayout, stringArg(args, "start_date"), time.Local)
			if err != nil {
				return "The start date format is invalid. Please use 'YYYY-MM-DD'.", nil
			}
			end, err := time.ParseInLocation(dateLayout, stringArg(args, "end_date"), time.Local)
			if err != nil {
				return "The end date format is invalid. Please use 'YYYY-MM-DD'.", nil
			}

			entries, err := repo.EntriesBetween(ctx, toolCtx.UserID(), start, end)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				return "No transactions found within the specified date range.", nil
			}

			monthsSpan := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
			if monthsSpan < 1 {
				monthsSpan = 1
			}

			stats := map[string]*periodStats{
				CategoryIncome:   {},
				CategoryExpense:  {},
				CategoryTransfer: {},
			}
			for i := range entries {
				entry := &entries[i]
				s, ok := stats[entry.Category]
				if !ok {
					continue
				}
				s.total += entry.Amount
				if s.highest == nil || abs(entry.Amount) > abs(s.highest.Amount) {
					s.highest = entry
				}
				if s.lowest == nil || abs(entry.Amount) < abs(s.lowest.Amount) {
					s.lowest = entry
				}
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Transaction summary from %s to %s\n", start.Format(dateLayout), end.Format(dateLayout))
			writeCategory(&b, "Income", stats[CategoryIncome], 1, monthsSpan)
			writeCategory(&b, "Expense", stats[CategoryExpense], -1, monthsSpan)
			writeCategory(&b, "Transfer", stats[CategoryTransfer], -1, monthsSpan)
			return b.String(), nil
		},
	)
}

// writeCategory renders one category block. sign normalizes stored amounts
// (expenses and transfers are stored negative) to positive display figures.
func writeCategory(b *strings.Builder, label string, s *periodStats, sign float64, monthsSpan int) {
	fmt.Fprintf(b, "\n%s overview\n", label)
	fmt.Fprintf(b, "- Total %s: %s\n", label, money(sign*s.total))
	if s.highest != nil {
		fmt.Fprintf(b, "- Highest %s: %s on %s (%s)\n",
			label, money(sign*s.highest.Amount), s.highest.Date.Format(dateLayout), s.highest.Description)
	}
	if s.lowest != nil {
		fmt.Fprintf(b, "- Lowest %s: %s on %s (%s)\n",
			label, money(sign*s.lowest.Amount), s.lowest.Date.Format(dateLayout), s.lowest.Description)
	}
	if monthsSpan > 1 {
		fmt.Fprintf(b, "- Average monthly %s: %s\n", label, money(sign*s.total/float64(monthsSpan)))
	}
}

func newCheckPendingTransferTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"check_pending_transfer",
		"Check the user's pending transfers.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasSavings {
				return "The user has no saving account with the bank.", nil
			}

			transfers, err := repo.PendingTransfers(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if len(transfers) == 0 {
				return "The user has no pending transfers.", nil
			}

			var (
				b     strings.Builder
				total float64
			)
			b.WriteString("Below are the user's pending transfers:\n")
			for _, tr := range transfers {
				fmt.Fprintf(&b, "- %s to %s at %s on %s.\n",
					money(tr.Amount), tr.RecipientAccount, tr.RecipientBank,
					tr.TransferDate.Format("Monday, January 2, 2006"))
				total += tr.Amount
			}
			fmt.Fprintf(&b, "Total pending transfer amount is %s.", money(total))
			return b.String(), nil
		},
	)
}

func newTransferFundTool(repo *Repository, now func() time.Time) tool.Tool {
	return tool.NewFunctionTool(
		"transfer_fund",
		"Make a transfer from the user's savings account to another account. Same-day transfers require "+
			"sufficient funds; the maximum per transaction is $3,000.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"amount": map[string]any{
					"type":        "number",
					"description": "The amount to transfer, in dollars",
				},
				"recipient_account": map[string]any{
					"type":        "string",
					"description": "The account number of the recipient",
				},
				"recipient_bank": map[string]any{
					"type":        "string",
					"description": "The bank of the recipient's account",
				},
				"transfer_date": map[string]any{
					"type":        "string",
					"description": "The date to perform the transfer, format 'YYYY-MM-DD'",
				},
			},
			"required": []string{"amount", "recipient_account", "recipient_bank", "transfer_date"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasSavings {
				return "The user has no saving account with the bank.", nil
			}

			when, err := time.ParseInLocation(dateLayout, stringArg(args, "transfer_date"), time.Local)
			if err != nil {
				return "The transfer date format is invalid. Please use 'YYYY-MM-DD'.", nil
			}
			today := now()
			todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
			if when.Before(todayDate) {
				return "Transfers can only be scheduled for today or a future date. Kindly update the transfer date to proceed.", nil
			}

			amount, _ := numberArg(args, "amount")
			if amount > transferLimit {
				return "The maximum allowable amount per transaction with the chatbot is $3,000. " +
					"Please contact your relationship manager to adjust the limit or select another channel to submit the transfer.", nil
			}
			if amount <= 0 {
				return "Please input an appropriate transfer amount.", nil
			}

			if when.Equal(todayDate) {
				balance, err := repo.LatestBalance(ctx, toolCtx.UserID())
				if err != nil {
					return nil, err
				}
				transfers, err := repo.PendingTransfers(ctx, toolCtx.UserID())
				if err != nil {
					return nil, err
				}
				todayPending := 0.0
				for _, tr := range transfers {
					if tr.TransferDate.Equal(todayDate) {
						todayPending += tr.Amount
					}
				}
				available := balance - todayPending
				if amount > available {
					return fmt.Sprintf(
						"Insufficient funds: your saving account does not currently hold enough balance to complete this transfer.\n"+
							"Available transferable amount today: %s.\n"+
							"Please ensure adequate funds are available before proceeding.",
						money(available)), nil
				}
			}

			transfer := &PendingTransfer{
				UserID:           toolCtx.UserID(),
				CreatedAt:        today,
				Amount:           amount,
				RecipientAccount: stringArg(args, "recipient_account"),
				RecipientBank:    stringArg(args, "recipient_bank"),
				TransferDate:     when,
			}
			if err := repo.SchedulePendingTransfer(ctx, transfer); err != nil {
				return nil, err
			}

			confirmation := fmt.Sprintf(
				"Your transfer of %s to account %s at %s has been successfully scheduled for %s.",
				money(amount), transfer.RecipientAccount, transfer.RecipientBank,
				when.Format("Monday, January 2, 2006"))
			if when.After(todayDate) {
				confirmation += " Kindly ensure that sufficient funds are available in your account on the scheduled transfer date."
			}
			return confirmation, nil
		},
	)
}

package banking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/tool"
)

// Fee and price band rules for day-limit orders.
const (
	tradingFeeRate = 0.005
	priceBand      = 0.2 // bids/asks may deviate at most 20% from market
)

// TradingTools builds the trading assistant's tool set. trade_stock is
// sensitive and runs only after human approval.
func TradingTools(repo *Repository, now func() time.Time) *tool.Set {
	set := tool.NewSet("trading")
	set.Add(
		newSearchStockTool(repo),
		newCheckEarningsTool(repo),
		newCheckPendingOrderTool(repo),
	)
	set.AddSensitive(newTradeStockTool(repo, now))
	return set
}

func newSearchStockTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"search_stock",
		"Search for the current stock price and a summary of recent market commentary on the stock.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"stock": map[string]any{
					"type":        "string",
					"description": "The plain English company name of the stock, no ticker or suffix",
				},
			},
			"required": []string{"stock"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			name := stringArg(args, "stock")
			quote, ok, err := repo.Quote(toolCtx.Context(), name)
			if err != nil {
				return nil, err
			}
			if !ok {
				return fmt.Sprintf("%s is not available in the US stock market. We only support trading in the US stock market.", name), nil
			}
			return fmt.Sprintf("The stock price of %s is %s as of %s. %s",
				quote.Name, money(quote.Price), quote.AsOf.Format(dateLayout), quote.Commentary), nil
		},
	)
}

// holding tracks one stock's position while replaying the trade history.
type holding struct {
	shares    int
	costBasis float64
	realized  float64
}

func newCheckEarningsTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"check_earnings",
		"Check the earnings and performance (gain or loss per stock and in total) of the user's trading account, "+
			"including current holdings and their market values.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasTrading {
				return "The client has no trading account with the bank.", nil
			}

			trades, err := repo.Trades(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			holdings := replayTrades(trades)

			var (
				parts         []string
				totalValue    float64
				totalHolding  float64
				totalRealized float64
			)
			for _, name := range sortedHoldingNames(holdings) {
				h := holdings[name]
				if h.shares <= 0 {
					continue
				}
				avgPrice := h.costBasis / float64(h.shares)

				quote, ok, err := repo.Quote(ctx, name)
				if err != nil {
					return nil, err
				}
				if !ok {
					parts = append(parts, fmt.Sprintf(
						"stock %s with %d shares at %s per share; no current market price is available.",
						name, h.shares, money(avgPrice)))
					totalRealized += h.realized
					continue
				}

				value := float64(h.shares) * quote.Price
				holdingEarning := value - h.costBasis
				totalValue += value
				totalHolding += holdingEarning
				totalRealized += h.realized

				parts = append(parts, fmt.Sprintf(
					"stock %s with %d shares at %s per share, the current price of the stock is %s, "+
						"the current holding value is %s, the current holding earning is %s, "+
						"and the realized earning is %s.",
					name, h.shares, money(avgPrice), money(quote.Price),
					money(value), money(holdingEarning), money(h.realized)))
			}

			if len(parts) == 0 {
				return "The user is not holding any stocks at the moment.", nil
			}
			return fmt.Sprintf(
				"The user is holding:\n%s\n\nIn total, the user's total holding value of all stocks is %s, "+
					"the total holding earning is %s, and the total realized earning is %s.",
				strings.Join(parts, "\n"), money(totalValue), money(totalHolding), money(totalRealized)), nil
		},
	)
}

func newCheckPendingOrderTool(repo *Repository) tool.Tool {
	return tool.NewFunctionTool(
		"check_pending_order",
		"Check the user's pending day-limit orders.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasTrading {
				return "The user has no trading account with the bank.", nil
			}

			orders, err := repo.PendingOrders(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if len(orders) == 0 {
				return "The user has no pending orders.", nil
			}

			var (
				b              strings.Builder
				buyOrderAmount float64
			)
			b.WriteString("Below are the user's pending orders (Daily Limited Orders):\n")
			for _, o := range orders {
				volume := o.Volume
				if volume < 0 {
					volume = -volume
				}
				fmt.Fprintf(&b, "- %s order of %d shares of %s at %s per share with trading fee of %s, total transfer amount is %s.\n",
					o.Action, volume, o.Stock, money(o.UnitPrice), money(o.TradingFee), money(abs(o.TotalAmount)))
				if o.Action == ActionBuy {
					buyOrderAmount += o.TotalAmount
				}
			}
			if buyOrderAmount > 0 {
				fmt.Fprintf(&b, "The total pending buy order amount is %s.", money(buyOrderAmount))
			}
			return b.String(), nil
		},
	)
}

func newTradeStockTool(repo *Repository, now func() time.Time) tool.Tool {
	return tool.NewFunctionTool(
		"trade_stock",
		"Perform a trade (buy or sell stocks) on the user's trading account. Only day-limit orders are supported. "+
			"A buy order requires sufficient cash excluding the amount of other pending buy orders.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"stock": map[string]any{
					"type":        "string",
					"description": "The plain English company name of the stock to trade",
				},
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{ActionBuy, ActionSell},
					"description": "The type of trade, buy or sell",
				},
				"volume": map[string]any{
					"type":        "integer",
					"description": "The number of shares to trade",
				},
				"price": map[string]any{
					"type":        "number",
					"description": "The bid or asking price per share",
				},
			},
			"required": []string{"stock", "action", "volume", "price"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()

			action := stringArg(args, "action")
			volume, _ := intArg(args, "volume")
			price, _ := numberArg(args, "price")
			if action != ActionBuy && action != ActionSell {
				return "The specified trade action is invalid. Kindly select either 'buy' or 'sell' to proceed with your transaction.", nil
			}
			if volume <= 0 || price <= 0 {
				return "Please provide a positive volume and price for the trade.", nil
			}

			customer, err := repo.Customer(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			if !customer.HasTrading {
				return "The user has no trading account with the bank.", nil
			}

			name := stringArg(args, "stock")
			quote, ok, err := repo.Quote(ctx, name)
			if err != nil {
				return nil, err
			}
			if !ok {
				return fmt.Sprintf("The stock you want to %s is not available in the US stock market. We only support trading in the US stock market.", action), nil
			}

			trades, err := repo.Trades(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}
			orders, err := repo.PendingOrders(ctx, toolCtx.UserID())
			if err != nil {
				return nil, err
			}

			tradingAmount := price * float64(volume)
			tradingFee := tradingAmount * tradingFeeRate

			if action == ActionBuy {
				floor := quote.Price * (1 - priceBand)
				if price < floor {
					return fmt.Sprintf("Your bid price falls below the permitted threshold of %s. Kindly revise your buy order to comply with the requirements.", money(floor)), nil
				}

				currentCash := 0.0
				if len(trades) > 0 {
					currentCash = trades[len(trades)-1].CashEnd
				}
				pendingBuy := 0.0
				for _, o := range orders {
					if o.Action == ActionBuy {
						pendingBuy += o.TotalAmount
					}
				}
				totalAmount := tradingAmount + tradingFee
				availableFunds := currentCash - pendingBuy
				if totalAmount > availableFunds {
					return fmt.Sprintf(
						"Insufficient funds: Your trading account does not currently hold sufficient funds to place this buy order.\n"+
							"Required amount (including applicable trading fees): %s.\n"+
							"Available funds for trading: %s.\n"+
							"Please ensure your account is adequately funded before submitting a new order.",
						money(totalAmount), money(availableFunds)), nil
				}

				order := &Order{
					UserID:        toolCtx.UserID(),
					CreatedAt:     now(),
					Stock:         quote.Name,
					Action:        ActionBuy,
					UnitPrice:     price,
					Volume:        volume,
					TradingAmount: tradingAmount,
					TradingFee:    tradingFee,
					TotalAmount:   totalAmount,
				}
				if err := repo.PlaceOrder(ctx, order); err != nil {
					return nil, err
				}
				return fmt.Sprintf(
					"Order Confirmation: Your request to purchase %d shares of %s at %s per share has been successfully submitted.\n"+
						"Total amount reserved for settlement: %s, which includes a trading fee of %s.",
					volume, quote.Name, money(price), money(totalAmount), money(tradingFee)), nil
			}

			// Sell order.
			holdings := replayTrades(trades)
			currentShares := 0
			if h, ok := holdings[quote.Name]; ok {
				currentShares = h.shares
			}
			pendingSell := 0
			for _, o := range orders {
				if o.Action == ActionSell && o.Stock == quote.Name {
					pendingSell += -o.Volume
				}
			}
			availableVolume := currentShares - pendingSell
			if availableVolume < volume {
				return fmt.Sprintf(
					"You do not currently hold a sufficient quantity of %s shares to place this sell order.\n"+
						"Available volume for trading: %d.",
					quote.Name, availableVolume), nil
			}
			ceiling := quote.Price * (1 + priceBand)
			if price > ceiling {
				return fmt.Sprintf("Your asking price exceeds the allowable limit of %s. Please adjust your sell order to align with the requirements.", money(ceiling)), nil
			}

			totalAmount := tradingAmount - tradingFee
			order := &Order{
				UserID:        toolCtx.UserID(),
				CreatedAt:     now(),
				Stock:         quote.Name,
				Action:        ActionSell,
				UnitPrice:     price,
				Volume:        -volume,
				TradingAmount: -tradingAmount,
				TradingFee:    tradingFee,
				TotalAmount:   -totalAmount,
			}
			if err := repo.PlaceOrder(ctx, order); err != nil {
				return nil, err
			}
			return fmt.Sprintf(
				"Order Confirmation: Your request to sell %d shares of %s at %s per share has been successfully submitted.\n"+
					"Estimated net proceeds from this transaction: %s, after deducting a trading fee of %s.",
				volume, quote.Name, money(price), money(totalAmount), money(tradingFee)), nil
		},
	)
}

// replayTrades rebuilds per-stock positions from the signed trade history:
// buys grow the cost basis, sells realize P&L against the average cost.
func replayTrades(trades []Trade) map[string]*holding {
	holdings := make(map[string]*holding)
	for _, t := range trades {
		h, ok := holdings[t.Stock]
		if !ok {
			h = &holding{}
			holdings[t.Stock] = h
		}
		if t.Volume > 0 {
			h.shares += t.Volume
			h.costBasis += t.TotalAmount
			continue
		}
		sold := -t.Volume
		avgCost := 0.0
		if h.shares > 0 {
			avgCost = h.costBasis / float64(h.shares)
		}
		unitProceeds := t.TotalAmount / float64(t.Volume)
		h.realized += (unitProceeds - avgCost) * float64(sold)
		h.shares -= sold
		h.costBasis -= avgCost * float64(sold)
		if h.shares == 0 {
			h.costBasis = 0
		}
	}
	return holdings
}

func sortedHoldingNames(holdings map[string]*holding) []string {
	names := make([]string, 0, len(holdings))
	for name := range holdings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

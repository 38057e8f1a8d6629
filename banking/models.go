package banking

import "time"

// Transaction categories stored on account entries.
const (
	CategoryIncome   = "Income"
	CategoryExpense  = "Expense"
	CategoryTransfer = "Transfer"
)

// Order actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Manager is a relationship manager assigned to customers.
type Manager struct {
	ManagerID string `gorm:"primaryKey;size:32"`
	GivenName string `gorm:"size:64;not null"`
	Surname   string `gorm:"size:64;not null"`
}

// Customer is a bank client. HasSavings / HasTrading gate which account
// tools return data for the customer.
type Customer struct {
	UserID      string    `gorm:"primaryKey;size:32"`
	GivenName   string    `gorm:"size:64;not null"`
	Surname     string    `gorm:"size:64;not null"`
	Nationality string    `gorm:"size:8"`
	ClientSince time.Time `gorm:"not null"`
	ManagerID   string    `gorm:"size:32;index"`
	Manager     Manager   `gorm:"references:ManagerID"`
	HasSavings  bool      `gorm:"not null"`
	HasTrading  bool      `gorm:"not null"`
}

// Appointment is a scheduled meeting with the relationship manager.
type Appointment struct {
	ID           uint64    `gorm:"primaryKey"`
	UserID       string    `gorm:"size:32;not null;index:idx_appointments_user_time,priority:1"`
	BookedAt     time.Time `gorm:"not null"`
	ScheduledFor time.Time `gorm:"not null;index:idx_appointments_user_time,priority:2"`
}

// AccountEntry is one booked savings account transaction. Amount is signed
// (negative for expenses and outgoing transfers); Balance is the running
// balance after the entry.
type AccountEntry struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      string    `gorm:"size:32;not null;index:idx_entries_user_date,priority:1"`
	Date        time.Time `gorm:"not null;index:idx_entries_user_date,priority:2"`
	Description string    `gorm:"size:255"`
	Category    string    `gorm:"size:16;not null;index"`
	Amount      float64   `gorm:"not null"`
	Balance     float64   `gorm:"not null"`
}

// PendingTransfer is a scheduled outgoing transfer from the savings account.
type PendingTransfer struct {
	ID               uint64    `gorm:"primaryKey"`
	UserID           string    `gorm:"size:32;not null;index"`
	CreatedAt        time.Time `gorm:"not null"`
	Amount           float64   `gorm:"not null"`
	RecipientAccount string    `gorm:"size:64;not null"`
	RecipientBank    string    `gorm:"size:128;not null"`
	TransferDate     time.Time `gorm:"not null"`
}

// Trade is one executed trade on the trading account. Volume is signed
// (positive buys, negative sells); CashEnd is the account's cash balance
// after settlement.
type Trade struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      string    `gorm:"size:32;not null;index:idx_trades_user_date,priority:1"`
	Date        time.Time `gorm:"not null;index:idx_trades_user_date,priority:2"`
	Stock       string    `gorm:"size:64;not null;index"`
	Volume      int       `gorm:"not null"`
	UnitPrice   float64   `gorm:"not null"`
	TradingFee  float64   `gorm:"not null"`
	TotalAmount float64   `gorm:"not null"`
	CashEnd     float64   `gorm:"not null"`
}

// Order is a pending day-limit order. Volume and amounts are signed the same
// way as Trade.
type Order struct {
	ID            uint64    `gorm:"primaryKey"`
	UserID        string    `gorm:"size:32;not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
	Stock         string    `gorm:"size:64;not null"`
	Action        string    `gorm:"size:8;not null"`
	UnitPrice     float64   `gorm:"not null"`
	Volume        int       `gorm:"not null"`
	TradingAmount float64   `gorm:"not null"`
	TradingFee    float64   `gorm:"not null"`
	TotalAmount   float64   `gorm:"not null"`
}

// StockQuote is the latest known market state for one stock, keyed by the
// plain English company name the assistants use.
type StockQuote struct {
	Name       string    `gorm:"primaryKey;size:64"`
	Price      float64   `gorm:"not null"`
	Commentary string    `gorm:"type:text"`
	AsOf       time.Time `gorm:"not null"`
}

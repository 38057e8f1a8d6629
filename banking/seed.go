package banking

import (
	"context"
	"fmt"
	"time"
)

// Seed populates the database with a demo customer, account history and
// market quotes. Dates are anchored to now so same-day business rules stay
// exercisable; existing rows are wiped first.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	day := func(offset int) time.Time {
		d := now.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	}

	db := s.db.WithContext(ctx)

	for _, model := range []any{
		&Appointment{}, &AccountEntry{}, &PendingTransfer{},
		&Trade{}, &Order{}, &StockQuote{}, &Customer{}, &Manager{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("seed: wipe: %w", err)
		}
	}

	manager := Manager{ManagerID: "PM-7", GivenName: "Daniel", Surname: "Frey"}
	customer := Customer{
		UserID:      "U1000",
		GivenName:   "Nora",
		Surname:     "Keller",
		Nationality: "CH",
		ClientSince: time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		ManagerID:   manager.ManagerID,
		HasSavings:  true,
		HasTrading:  true,
	}

	entries := []AccountEntry{
		{UserID: customer.UserID, Date: day(-60), Description: "Salary", Category: CategoryIncome, Amount: 8200, Balance: 22400},
		{UserID: customer.UserID, Date: day(-52), Description: "Rent", Category: CategoryExpense, Amount: -2400, Balance: 20000},
		{UserID: customer.UserID, Date: day(-45), Description: "Utility bill", Category: CategoryExpense, Amount: -180, Balance: 19820},
		{UserID: customer.UserID, Date: day(-30), Description: "Salary", Category: CategoryIncome, Amount: 8200, Balance: 28020},
		{UserID: customer.UserID, Date: day(-21), Description: "Transfer to J. Keller", Category: CategoryTransfer, Amount: -1500, Balance: 26520},
		{UserID: customer.UserID, Date: day(-12), Description: "Groceries", Category: CategoryExpense, Amount: -420, Balance: 26100},
		{UserID: customer.UserID, Date: day(-2), Description: "Interest", Category: CategoryIncome, Amount: 35, Balance: 26135},
	}

	trades := []Trade{
		{UserID: customer.UserID, Date: day(-90), Stock: "Adobe", Volume: 20, UnitPrice: 480, TradingFee: 48, TotalAmount: 9648, CashEnd: 40352},
		{UserID: customer.UserID, Date: day(-60), Stock: "Nvidia", Volume: 30, UnitPrice: 110, TradingFee: 16.5, TotalAmount: 3316.5, CashEnd: 37035.5},
		{UserID: customer.UserID, Date: day(-20), Stock: "Adobe", Volume: -5, UnitPrice: 520, TradingFee: 13, TotalAmount: -2587, CashEnd: 39622.5},
	}

	quotes := []StockQuote{
		{Name: "Adobe", Price: 530, AsOf: day(0), Commentary: "Analysts point to steady creative-suite subscription growth."},
		{Name: "Nvidia", Price: 125, AsOf: day(0), Commentary: "Demand for data-center accelerators keeps the stock volatile."},
		{Name: "Apple", Price: 232, AsOf: day(0), Commentary: "Services revenue offsets a slower hardware cycle."},
	}

	appointments := []Appointment{
		{UserID: customer.UserID, BookedAt: day(-10), ScheduledFor: day(14).Add(10 * time.Hour)},
	}

	transfers := []PendingTransfer{
		{UserID: customer.UserID, CreatedAt: day(-3), Amount: 800, RecipientAccount: "CH93-0076-2011-6238-5295-7", RecipientBank: "Alpen Bank", TransferDate: day(5)},
	}

	if err := db.Create(&manager).Error; err != nil {
		return fmt.Errorf("seed: manager: %w", err)
	}
	if err := db.Create(&customer).Error; err != nil {
		return fmt.Errorf("seed: customer: %w", err)
	}
	for _, batch := range []any{&entries, &trades, &quotes, &appointments, &transfers} {
		if err := db.Create(batch).Error; err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

package banking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrCustomerNotFound is returned when a user id matches no customer.
var ErrCustomerNotFound = errors.New("banking: customer not found")

// Repository wraps the query surface the tools and the user context provider
// need. All reads and writes carry the caller's context.
type Repository struct {
	store *Store
}

// NewRepository builds a repository over an opened store.
func NewRepository(store *Store) *Repository {
	return &Repository{store: store}
}

// Customer loads a customer with their relationship manager preloaded.
func (r *Repository) Customer(ctx context.Context, userID string) (*Customer, error) {
	var c Customer
	err := r.store.db.WithContext(ctx).Preload("Manager").First(&c, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer %s: %w", userID, err)
	}
	return &c, nil
}

// Appointments lists the customer's upcoming appointments ordered by time.
func (r *Repository) Appointments(ctx context.Context, userID string) ([]Appointment, error) {
	var appts []Appointment
	err := r.store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_for").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", userID, err)
	}
	return appts, nil
}

// BookAppointment records a new appointment.
func (r *Repository) BookAppointment(ctx context.Context, appt *Appointment) error {
	if err := r.store.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("book appointment for %s: %w", appt.UserID, err)
	}
	return nil
}

// LatestBalance returns the running balance of the most recent savings
// account entry.
func (r *Repository) LatestBalance(ctx context.Context, userID string) (float64, error) {
	var entry AccountEntry
	err := r.store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("latest balance for %s: %w", userID, err)
	}
	return entry.Balance, nil
}

// EntriesBetween returns the savings entries in [start, end] inclusive of
// the end date, ordered by date.
func (r *Repository) EntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]AccountEntry, error) {
	var entries []AccountEntry
	err := r.store.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end.AddDate(0, 0, 1)).
		Order("date").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("entries for %s: %w", userID, err)
	}
	return entries, nil
}

// PendingTransfers lists scheduled transfers ordered by transfer date.
func (r *Repository) PendingTransfers(ctx context.Context, userID string) ([]PendingTransfer, error) {
	var transfers []PendingTransfer
	err := r.store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("transfer_date").
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("pending transfers for %s: %w", userID, err)
	}
	return transfers, nil
}

// SchedulePendingTransfer records a new scheduled transfer.
func (r *Repository) SchedulePendingTransfer(ctx context.Context, transfer *PendingTransfer) error {
	if err := r.store.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("schedule transfer for %s: %w", transfer.UserID, err)
	}
	return nil
}

// Trades lists the customer's executed trades ordered by date.
func (r *Repository) Trades(ctx context.Context, userID string) ([]Trade, error) {
	var trades []Trade
	err := r.store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("trades for %s: %w", userID, err)
	}
	return trades, nil
}

// PendingOrders lists the customer's open day-limit orders.
func (r *Repository) PendingOrders(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	err := r.store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("pending orders for %s: %w", userID, err)
	}
	return orders, nil
}

// PlaceOrder records a new pending order.
func (r *Repository) PlaceOrder(ctx context.Context, order *Order) error {
	if err := r.store.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("place order for %s: %w", order.UserID, err)
	}
	return nil
}

// Quote looks up the latest market state for a stock by its plain name,
// case-insensitively. ok is false for unlisted stocks.
func (r *Repository) Quote(ctx context.Context, name string) (*StockQuote, bool, error) {
	var quote StockQuote
	err := r.store.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("quote for %s: %w", name, err)
	}
	return &quote, true, nil
}

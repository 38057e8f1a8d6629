// Package banking is the domain data layer of the assistant: customers and
// their relationship managers, savings account history, pending transfers,
// trading history and orders, and the tools the assistants execute against
// them. Business rule violations (an appointment in the past, an over-limit
// transfer) are reported as tool results the model can relay, never as
// errors.
package banking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config controls how the banking database is opened.
type Config struct {
	Path         string        `mapstructure:"path"`
	InMemory     bool          `mapstructure:"in_memory"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
}

// Store owns the banking database handle.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Open opens (or creates) the database, applies pragmas and migrates the
// schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &Store{db: db, sqlDB: sqlDB}

	if err := s.db.WithContext(ctx).Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if err := s.db.WithContext(ctx).Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("banking: store not initialized")
	}
	err := s.db.WithContext(ctx).AutoMigrate(
		&Manager{},
		&Customer{},
		&Appointment{},
		&AccountEntry{},
		&PendingTransfer{},
		&Trade{},
		&Order{},
		&StockQuote{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB exposes the gorm handle for the repository.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func dsnFromConfig(cfg Config) (string, error) {
	if cfg.InMemory {
		return fmt.Sprintf("file::memory:?cache=shared&_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()), nil
	}
	if cfg.Path == "" {
		return "", errors.New("banking: path is required unless in_memory is set")
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds()), nil
}

// Package sqlite provides a durable checkpoint.Store backed by SQLite, for
// sessions that must survive a process restart.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seybold/bankdesk/checkpoint"
)

// Config controls how the SQLite database is opened.
type Config struct {
	Path         string        `mapstructure:"path"`
	InMemory     bool          `mapstructure:"in_memory"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
}

// sessionRow is the persisted shape of one checkpoint record.
type sessionRow struct {
	SessionID    string    `gorm:"primaryKey;size:128"`
	Conversation string    `gorm:"type:text;not null"`
	Next         string    `gorm:"size:255;not null"`
	Terminated   bool      `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null;index"`
}

func (sessionRow) TableName() string { return "session_checkpoints" }

// Store is a checkpoint.Store persisting records in a SQLite database.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

var _ checkpoint.Store = (*Store)(nil)

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

	if err := s.db.WithContext(ctx).AutoMigrate(&sessionRow{}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the record keyed by session id.
func (s *Store) Save(ctx context.Context, record *checkpoint.Record) error {
	row := sessionRow{
		SessionID:    record.SessionID,
		Conversation: string(record.Conversation),
		Next:         record.Next,
		Terminated:   record.Terminated,
		UpdatedAt:    time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", record.SessionID, err)
	}
	return nil
}

// Load returns the record for the session or checkpoint.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) (*checkpoint.Record, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkpoint.ErrNotFound
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", sessionID, err)
	}
	return &checkpoint.Record{
		SessionID:    row.SessionID,
		Conversation: json.RawMessage(row.Conversation),
		Next:         row.Next,
		Terminated:   row.Terminated,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// Delete removes the record; deleting an absent session is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Delete(&sessionRow{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", sessionID, err)
	}
	return nil
}

func dsnFromConfig(cfg Config) (string, error) {
	if cfg.InMemory {
		return fmt.Sprintf("file::memory:?cache=shared&_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()), nil
	}
	if cfg.Path == "" {
		return "", errors.New("sqlite: path is required unless in_memory is set")
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds()), nil
}

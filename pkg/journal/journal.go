// Package journal records submitted transfers and their confirmation status.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = fmt.Errorf("transfer not found")

// Status is the confirmation state of a journaled transfer.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// TransferRecord is one submitted transfer, keyed by its signature.
type TransferRecord struct {
	Signature string    `gorm:"column:signature;primaryKey"`
	Sender    string    `gorm:"column:sender;not null;index"`
	Receiver  string    `gorm:"column:receiver;not null"`
	Lamports  uint64    `gorm:"column:lamports;not null"`
	Blockhash string    `gorm:"column:blockhash;not null"`
	Status    Status    `gorm:"column:status;not null;index"`
	Slot      uint64    `gorm:"column:slot"`
	Error     string    `gorm:"column:error"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (TransferRecord) TableName() string {
	return "transfers"
}

// Store persists transfer records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database in cfg and returns a store on it.
func Open(cfg Config) (*Store, error) {
	db, err := Connect(cfg, nil)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Record inserts rec. An empty status is stored as pending.
func (s *Store) Record(ctx context.Context, rec *TransferRecord) error {
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

// MarkConfirmed records that the transfer landed at slot.
func (s *Store) MarkConfirmed(ctx context.Context, signature string, slot uint64) error {
	return s.update(ctx, signature, map[string]any{
		"status": StatusConfirmed,
		"slot":   slot,
		"error":  "",
	})
}

// MarkFailed records that the transfer was processed with an error.
func (s *Store) MarkFailed(ctx context.Context, signature string, slot uint64, reason string) error {
	return s.update(ctx, signature, map[string]any{
		"status": StatusFailed,
		"slot":   slot,
		"error":  reason,
	})
}

func (s *Store) update(ctx context.Context, signature string, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&TransferRecord{}).
		Where("signature = ?", signature).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update transfer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, signature)
	}
	return nil
}

// Get returns the record with the given signature.
func (s *Store) Get(ctx context.Context, signature string) (*TransferRecord, error) {
	var rec TransferRecord
	err := s.db.WithContext(ctx).Where("signature = ?", signature).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, signature)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &rec, nil
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	Sender string
	Status Status
	Limit  int
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]TransferRecord, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Order("signature")
	if opts.Sender != "" {
		q = q.Where("sender = ?", opts.Sender)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var records []TransferRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

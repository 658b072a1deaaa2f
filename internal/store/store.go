// Package store owns the process-wide database handle and hands out
// request-scoped transactions.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store wraps the database connection for the lifetime of the process
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// New creates a Store. A non-positive timeout leaves store calls unbounded.
func New(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// WithTx runs fn inside one database transaction bounded by the store timeout.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

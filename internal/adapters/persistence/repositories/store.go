package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormStore implements Store on top of *gorm.DB. Transaction returns a
// Store bound to the transactional handle, so the same methods work inside
// and outside a transaction.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates the GORM-backed Store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Transaction runs fn atomically. Rolls back when fn returns an error.
func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

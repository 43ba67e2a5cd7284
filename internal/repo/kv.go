// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the SQLite-backed key/value store the
// saved-set collaborator persists through.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// KVStore adapts a GORM handle to an opaque byte store. It satisfies the
// savedset.KV interface without importing that package.
type KVStore struct {
	db *gorm.DB
}

// NewKVStore wraps db in a KVStore.
func NewKVStore(db *gorm.DB) *KVStore { return &KVStore{db: db} }

// GetBytes returns the value stored under key. ok is false when the key has
// never been written; that case is not an error.
func (s *KVStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	var rec domain.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

// SetBytes upserts value under key, replacing any previous value.
func (s *KVStore) SetBytes(ctx context.Context, key string, value []byte) error {
	rec := domain.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

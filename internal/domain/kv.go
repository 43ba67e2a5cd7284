// Package domain defines the persistence models shared by the repository
// layer. This file holds the key/value and idempotency schema used for the
// saved-set collaborator and safe-retry support on toggle requests.
package domain

import "time"

// KVEntry is an opaque key/value row. The saved-set store treats the value
// as raw bytes; this layer attaches no meaning to them.
type KVEntry struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Value     []byte    `gorm:"type:BLOB NOT NULL"`
	UpdatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (KVEntry) TableName() string { return "kv_entries" }

// Idempotency records a completed toggle request keyed by
// (user_id, recall_id, key). Replaying the same key returns the recorded
// outcome instead of flipping the saved state a second time.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_recall_key,priority:1"`
	RecallID  int       `gorm:"type:INTEGER NOT NULL;uniqueIndex:ux_user_recall_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_recall_key,priority:3"`
	Saved     bool      `gorm:"type:BOOLEAN NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

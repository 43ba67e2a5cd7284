package curation

import (
	"sync"
	"time"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// Dataset is the curated recall list for the process lifetime.
//
// It transitions from empty to populated exactly once: the first successful
// Publish wins and later calls are rejected, which makes the curation pass
// idempotent across repeated refresh attempts. Readers receive the shared
// backing slice; it is never mutated after publication, so snapshots are safe
// to read without further synchronization.
type Dataset struct {
	mu          sync.RWMutex
	recalls     []domain.Recall
	publishedAt time.Time
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset { return &Dataset{} }

// Publish installs the curated list. It succeeds only while the dataset is
// still empty; afterwards it reports false and leaves the data untouched.
// Publishing an empty list is a no-op and reports false.
func (d *Dataset) Publish(recalls []domain.Recall) bool {
	if len(recalls) == 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.recalls != nil {
		return false
	}
	d.recalls = recalls
	d.publishedAt = time.Now().UTC()
	return true
}

// Snapshot returns the curated list. The slice must be treated as read-only.
func (d *Dataset) Snapshot() []domain.Recall {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.recalls
}

// Len returns the curated length, zero before the first publish.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.recalls)
}

// Populated reports whether a curation pass has already published.
func (d *Dataset) Populated() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.recalls != nil
}

// PublishedAt returns when the dataset was populated (zero if it never was).
func (d *Dataset) PublishedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.publishedAt
}

// Package pagination exposes the curated recall dataset to consumers in
// fixed-size increments. The window only ever grows: previously exposed items
// are never removed or reordered, and the cursor is monotonically
// non-decreasing for the life of the process.
package pagination

import (
	"sync"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// DefaultPageSize is the number of items each LoadMore call reveals.
const DefaultPageSize = 25

// Source supplies the current curated snapshot. It is consulted on every
// call so the window picks up the dataset as soon as curation publishes.
type Source func() []domain.Recall

// Window tracks how much of the curated dataset has been revealed.
// All methods are safe for concurrent use; repeated LoadMore calls once the
// cursor reaches the dataset length are no-ops.
type Window struct {
	source   Source
	pageSize int

	mu     sync.Mutex
	cursor int
}

// NewWindow constructs a Window over source. pageSize <= 0 falls back to
// DefaultPageSize.
func NewWindow(source Source, pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{source: source, pageSize: pageSize}
}

// LoadMore advances the cursor by min(pageSize, remaining) and returns the
// number of newly revealed items (zero when the dataset is exhausted).
func (w *Window) LoadMore() int {
	data := w.source()

	w.mu.Lock()
	defer w.mu.Unlock()

	remaining := len(data) - w.cursor
	if remaining <= 0 {
		return 0
	}
	step := w.pageSize
	if remaining < step {
		step = remaining
	}
	w.cursor += step
	return step
}

// Visible returns the revealed prefix of the curated dataset, in curated
// order. The slice shares backing storage with the dataset snapshot and must
// be treated as read-only.
func (w *Window) Visible() []domain.Recall {
	data := w.source()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cursor > len(data) {
		// Only possible if the source shrank, which curation never does.
		return data
	}
	return data[:w.cursor]
}

// Cursor returns the current offset into the curated dataset.
func (w *Window) Cursor() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

// Exhausted reports whether every curated item has been revealed.
func (w *Window) Exhausted() bool {
	n := len(w.source())

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor >= n
}

// PageSize returns the configured increment.
func (w *Window) PageSize() int { return w.pageSize }

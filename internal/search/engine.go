package search

import (
	"strings"
	"sync"
	"time"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// DefaultDebounce is the delay between the last keystroke and evaluation.
const DefaultDebounce = 300 * time.Millisecond

// Source supplies the dataset a query is evaluated against. It is called at
// evaluation time (not at SetQuery time) so results always reflect the latest
// curated snapshot. Implementations must return a slice the engine may read
// without synchronization, i.e. a snapshot.
type Source func() []domain.Recall

// Engine runs debounced, cancelable query evaluation over a recall dataset.
//
// Every SetQuery call advances a generation counter. Evaluation is scheduled
// after the debounce delay; when it completes it publishes only if its
// generation is still current, so a result for a superseded query is silently
// dropped rather than overwriting a newer one. Evaluation itself
// (FilterRecalls) is synchronous and fast — only the publish step is guarded.
//
// All methods are safe for concurrent use.
type Engine struct {
	source    Source
	debounce  time.Duration
	threshold float64

	mu        sync.Mutex
	gen       uint64
	query     string
	searching bool
	results   []domain.Recall
	timer     *time.Timer
}

// NewEngine constructs an Engine reading from source. debounce <= 0 falls
// back to DefaultDebounce, threshold <= 0 to DefaultFuzzyThreshold.
func NewEngine(source Source, debounce time.Duration, threshold float64) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Engine{source: source, debounce: debounce, threshold: threshold}
}

// SetQuery replaces the live query.
//
// A blank query (after trimming) clears results and any in-flight evaluation
// immediately. A non-empty query marks the engine as searching and schedules
// evaluation after the debounce delay; an earlier pending evaluation is
// superseded.
func (e *Engine) SetQuery(query string) {
	query = strings.TrimSpace(query)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.query = query
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	if query == "" {
		e.searching = false
		e.results = nil
		return
	}

	e.searching = true
	gen := e.gen
	e.timer = time.AfterFunc(e.debounce, func() { e.evaluate(gen, query) })
}

// Rerun re-evaluates the current query against the latest dataset snapshot,
// without debouncing. It is a no-op when no query is set. Intended for the
// case where the curated dataset changed underneath an active search.
func (e *Engine) Rerun() {
	e.mu.Lock()
	query := e.query
	if query == "" {
		e.mu.Unlock()
		return
	}
	e.gen++
	gen := e.gen
	e.searching = true
	e.mu.Unlock()

	e.evaluate(gen, query)
}

// evaluate runs the filter and publishes iff gen is still current.
func (e *Engine) evaluate(gen uint64, query string) {
	res := FilterRecalls(e.source(), query, e.threshold)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		// A newer query superseded this evaluation; drop the stale result.
		return
	}
	e.results = res
	e.searching = false
}

// Query returns the current (trimmed) query text.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Searching reports whether a debounced evaluation is pending or running for
// the current query.
func (e *Engine) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searching
}

// Results returns the most recently published result set in ranked order.
// The returned slice is shared and must not be mutated by callers.
func (e *Engine) Results() []domain.Recall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results
}

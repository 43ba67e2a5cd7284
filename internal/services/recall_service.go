// Package services – RecallService
//
// This file implements RecallService, the application-level component that
// owns the curated recall dataset lifecycle: pulling a raw batch from the
// feed, running the curation pipeline, publishing the result exactly once,
// and exposing the paged window over it.
//
// Refresh semantics: the dataset publishes once per process lifetime. A
// refresh after a successful publish is a no-op; a refresh after a failed
// attempt retries from scratch. Concurrent refreshes serialize, so the feed
// is never fetched twice in parallel.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include batch sizes and window positions where applicable.

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recallhub/go-recall-backend/internal/curation"
	"github.com/recallhub/go-recall-backend/internal/domain"
	"github.com/recallhub/go-recall-backend/internal/pagination"
	"github.com/recallhub/go-recall-backend/internal/search"
)

// Fetcher pulls recall batches published on or after since.
type Fetcher interface {
	Fetch(ctx context.Context, since time.Time) ([]domain.Recall, error)
}

// RecallService coordinates feed ingestion, curation, and paging.
type RecallService struct {
	Feed     Fetcher
	Pipeline *curation.Pipeline
	Dataset  *curation.Dataset
	Window   *pagination.Window

	// Engine, when set, is re-run after a successful publish so an active
	// search picks up the new dataset.
	Engine *search.Engine

	// FetchWindow is how far back the feed pull reaches.
	FetchWindow time.Duration

	// Now is injected for testability and defaults to time.Now (UTC).
	Now func() time.Time

	refreshMu sync.Mutex
}

// Refresh fetches a raw batch, curates it, and publishes the dataset. It
// reports whether this call performed the publish: false with a nil error
// means the dataset was already populated and nothing was done.
func (s *RecallService) Refresh(ctx context.Context) (bool, error) {
	tr := otel.Tracer("services/RecallService")
	ctx, span := tr.Start(ctx, "Refresh")
	defer span.End()

	if s.Dataset.Populated() {
		return false, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// A concurrent refresh may have published while we waited for the lock.
	if s.Dataset.Populated() {
		return false, nil
	}

	since := s.now().Add(-s.FetchWindow)
	raw, err := s.Feed.Fetch(ctx, since)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	span.SetAttributes(attribute.Int("feed.batch_size", len(raw)))

	curated := s.Pipeline.Curate(raw)
	span.SetAttributes(attribute.Int("curation.size", len(curated)))

	published := s.Dataset.Publish(curated)
	if published && s.Engine != nil {
		s.Engine.Rerun()
	}
	return published, nil
}

// Visible returns the revealed prefix of the curated dataset.
func (s *RecallService) Visible(ctx context.Context) []domain.Recall {
	tr := otel.Tracer("services/RecallService")
	_, span := tr.Start(ctx, "Visible",
		trace.WithAttributes(attribute.Int("window.cursor", s.Window.Cursor())),
	)
	defer span.End()

	return s.Window.Visible()
}

// LoadMore advances the paging window and returns the newly revealed count
// together with the extended visible prefix.
func (s *RecallService) LoadMore(ctx context.Context) (int, []domain.Recall) {
	tr := otel.Tracer("services/RecallService")
	_, span := tr.Start(ctx, "LoadMore")
	defer span.End()

	step := s.Window.LoadMore()
	span.SetAttributes(
		attribute.Int("window.step", step),
		attribute.Int("window.cursor", s.Window.Cursor()),
	)
	return step, s.Window.Visible()
}

// Meta describes the paging state clients use to drive infinite scroll.
type Meta struct {
	Total       int       `json:"total"`
	Cursor      int       `json:"cursor"`
	PageSize    int       `json:"page_size"`
	Exhausted   bool      `json:"exhausted"`
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
}

// Meta returns the current dataset/window counters.
func (s *RecallService) Meta() Meta {
	return Meta{
		Total:       s.Dataset.Len(),
		Cursor:      s.Window.Cursor(),
		PageSize:    s.Window.PageSize(),
		Exhausted:   s.Window.Exhausted(),
		RefreshedAt: s.Dataset.PublishedAt(),
	}
}

func (s *RecallService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

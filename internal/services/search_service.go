// Package services – SearchService
//
// Thin application wrapper around the debounced search engine. It exists so
// the handler layer talks to one service surface and so query updates and
// result reads show up as spans alongside the other service methods.

package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recallhub/go-recall-backend/internal/domain"
	"github.com/recallhub/go-recall-backend/internal/search"
)

// SearchService exposes the live search state.
type SearchService struct {
	Engine *search.Engine
}

// SetQuery replaces the live query text. Blank input clears results.
func (s *SearchService) SetQuery(ctx context.Context, query string) {
	tr := otel.Tracer("services/SearchService")
	_, span := tr.Start(ctx, "SetQuery",
		trace.WithAttributes(attribute.Int("query.len", len(query))),
	)
	defer span.End()

	s.Engine.SetQuery(query)
}

// Results returns the latest published result set, the query it answers, and
// whether an evaluation is still pending.
func (s *SearchService) Results(ctx context.Context) (results []domain.Recall, query string, searching bool) {
	tr := otel.Tracer("services/SearchService")
	_, span := tr.Start(ctx, "Results")
	defer span.End()

	results = s.Engine.Results()
	query = s.Engine.Query()
	searching = s.Engine.Searching()
	span.SetAttributes(
		attribute.Int("results.count", len(results)),
		attribute.Bool("results.searching", searching),
	)
	return results, query, searching
}

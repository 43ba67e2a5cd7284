package curation

import (
	"strings"
	"time"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// DefaultCap bounds the curated dataset size.
const DefaultCap = 200

// publish-date layouts accepted by the recency filter, tried in order.
var publishDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Pipeline selects the curated subset of a raw recall batch.
//
// Steps run in fixed order:
//  1. recent: publish date parses and is within the last week
//  2. brand: at least one manufacturer name on the (case-sensitive) brand
//     allowlist
//  3. category: brand recalls narrowed to those with a product whose Types
//     contains a category keyword, case-insensitively
//  4. merge recent ++ brand (duplicates allowed), truncate to Cap
//  5. fallback to the first Cap raw records when the merge is empty
//
// Now is injected for testability and defaults to time.Now (UTC).
type Pipeline struct {
	Allow Allowlist
	Cap   int
	Now   func() time.Time
}

// NewPipeline constructs a Pipeline with the given allowlist, the default
// cap, and the wall clock.
func NewPipeline(allow Allowlist) *Pipeline {
	return &Pipeline{Allow: allow, Cap: DefaultCap, Now: func() time.Time { return time.Now().UTC() }}
}

// Curate runs the selection steps over raw and returns the curated list.
// raw is never mutated; the result is a fresh slice in stable order.
func (p *Pipeline) Curate(raw []domain.Recall) []domain.Recall {
	limit := p.Cap
	if limit <= 0 {
		limit = DefaultCap
	}
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}
	oneWeekAgo := now.AddDate(0, 0, -7)

	recent := recentRecalls(raw, oneWeekAgo)
	brand := p.brandRecalls(raw)
	brand = p.categoryRecalls(brand)

	merged := make([]domain.Recall, 0, len(recent)+len(brand))
	merged = append(merged, recent...)
	merged = append(merged, brand...)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	if len(merged) == 0 {
		// Nothing recent and no recognized brand: surface the head of the
		// raw list rather than an empty screen.
		if len(raw) > limit {
			raw = raw[:limit]
		}
		merged = append(merged, raw...)
	}
	return merged
}

// recentRecalls keeps recalls whose publish date parses and is on or after
// cutoff. Unparsable or missing dates exclude the record, never error.
func recentRecalls(raw []domain.Recall, cutoff time.Time) []domain.Recall {
	var out []domain.Recall
	for _, r := range raw {
		ts, ok := parsePublishDate(r.LastPublishDate)
		if !ok {
			continue
		}
		if !ts.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// brandRecalls keeps recalls with at least one manufacturer on the brand
// allowlist. Matching is exact and case-sensitive, mirroring the feed's own
// brand spellings.
func (p *Pipeline) brandRecalls(raw []domain.Recall) []domain.Recall {
	if len(p.Allow.Brands) == 0 {
		return nil
	}
	brands := make(map[string]struct{}, len(p.Allow.Brands))
	for _, b := range p.Allow.Brands {
		brands[b] = struct{}{}
	}

	var out []domain.Recall
	for _, r := range raw {
		for _, m := range r.Manufacturers {
			if _, ok := brands[m.Name]; ok {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// categoryRecalls narrows to recalls containing at least one product whose
// Types field contains a category keyword, case-insensitively.
func (p *Pipeline) categoryRecalls(in []domain.Recall) []domain.Recall {
	if len(p.Allow.Categories) == 0 {
		return nil
	}
	var out []domain.Recall
	for _, r := range in {
		if hasCategoryProduct(r, p.Allow.Categories) {
			out = append(out, r)
		}
	}
	return out
}

func hasCategoryProduct(r domain.Recall, categories []string) bool {
	for _, prod := range r.Products {
		types := strings.ToLower(prod.Types)
		if types == "" {
			continue
		}
		for _, cat := range categories {
			if strings.Contains(types, strings.ToLower(cat)) {
				return true
			}
		}
	}
	return false
}

// parsePublishDate tries the accepted layouts in order.
func parsePublishDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

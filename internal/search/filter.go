package search

import (
	"strings"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// DefaultFuzzyThreshold is the similarity a title must exceed to qualify for
// the fuzzy tier when no explicit threshold is configured.
const DefaultFuzzyThreshold = 0.7

// FilterRecalls evaluates query against recalls and returns ranked matches.
//
// Matching is tiered; tiers are mutually exclusive by construction and each
// tier preserves the input (curated-dataset) order:
//
//	Tier 1: title contains the query (case-insensitive)
//	Tier 2: description, any product name/description, or any hazard name
//	        contains the query
//	Tier 3: Similarity(title, query) exceeds threshold
//
// The result is Tier1 ++ Tier2 ++ Tier3. A blank query (after trimming)
// returns nil. threshold <= 0 falls back to DefaultFuzzyThreshold.
func FilterRecalls(recalls []domain.Recall, query string, threshold float64) []domain.Recall {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	q := strings.ToLower(query)

	var exact, related, fuzzy []domain.Recall
	for _, r := range recalls {
		switch {
		case strings.Contains(strings.ToLower(r.Title), q):
			exact = append(exact, r)
		case matchesRelated(r, q):
			related = append(related, r)
		case Similarity(r.Title, query) > threshold:
			fuzzy = append(fuzzy, r)
		}
	}

	out := make([]domain.Recall, 0, len(exact)+len(related)+len(fuzzy))
	out = append(out, exact...)
	out = append(out, related...)
	out = append(out, fuzzy...)
	return out
}

// matchesRelated reports a Tier-2 hit: the query appears in the description,
// a product name or description, or a hazard name.
func matchesRelated(r domain.Recall, q string) bool {
	if strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, p := range r.Products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			return true
		}
	}
	for _, h := range r.Hazards {
		if strings.Contains(strings.ToLower(h.Name), q) {
			return true
		}
	}
	return false
}

package search

import (
	"testing"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

func filterFixture() []domain.Recall {
	return []domain.Recall{
		{ID: 1, Title: "Gas Grill Recall", Description: "Valve may leak."},
		{ID: 2, Title: "Crib Mattress", Description: "Infant grill guard missing."},         // tier 2 via description
		{ID: 3, Title: "Space Heater", Products: []domain.Product{{Name: "Grill Master"}}}, // tier 2 via product name
		{ID: 4, Title: "Toy Blocks", Hazards: []domain.Hazard{{Name: "Grill burn"}}},       // tier 2 via hazard
		{ID: 5, Title: "Gass Gril", Description: "unrelated"},                              // fuzzy-ish of "gas grill"
		{ID: 6, Title: "Lawn Chair", Description: "unrelated"},
	}
}

func ids(rs []domain.Recall) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestFilterRecalls_BlankQuery(t *testing.T) {
	if got := FilterRecalls(filterFixture(), "   ", 0); got != nil {
		t.Fatalf("blank query must return nil, got %v", ids(got))
	}
}

func TestFilterRecalls_TierOrdering(t *testing.T) {
	got := FilterRecalls(filterFixture(), "grill", 0)
	want := []int{1, 2, 3, 4} // tier1 (title) before tier2 hits, dataset order within tiers
	if len(got) != len(want) {
		t.Fatalf("got ids %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got ids %v, want %v", i, ids(got), want)
		}
	}
}

func TestFilterRecalls_CaseInsensitive(t *testing.T) {
	got := FilterRecalls(filterFixture(), "GRILL", 0)
	if len(got) == 0 || got[0].ID != 1 {
		t.Fatalf("matching must be case-insensitive, got %v", ids(got))
	}
}

func TestFilterRecalls_FuzzyTierLast(t *testing.T) {
	got := FilterRecalls(filterFixture(), "Gas Grill", 0)
	// "Gas Grill Recall" contains the query (tier 1); "Gass Gril" only
	// qualifies through similarity (distance 2 over length 9 ≈ 0.78 > 0.7).
	if len(got) != 2 {
		t.Fatalf("got ids %v, want [1 5]", ids(got))
	}
	if got[0].ID != 1 || got[1].ID != 5 {
		t.Fatalf("fuzzy match must rank after exact: got %v", ids(got))
	}
}

func TestFilterRecalls_TiersMutuallyExclusive(t *testing.T) {
	// A recall hitting tier 1 must not be repeated by tier 2 or 3.
	rs := []domain.Recall{{
		ID:          1,
		Title:       "Gas Grill Recall",
		Description: "grill valve may leak",
		Hazards:     []domain.Hazard{{Name: "grill fire"}},
	}}
	got := FilterRecalls(rs, "grill", 0)
	if len(got) != 1 {
		t.Fatalf("recall must appear exactly once, got %v", ids(got))
	}
}

func TestFilterRecalls_NoMatches(t *testing.T) {
	got := FilterRecalls(filterFixture(), "zzzzzzzz", 0)
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
}

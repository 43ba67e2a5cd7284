// Package search provides the in-memory query engine for the curated recall
// dataset. It is intentionally small and dependency-free, in the same spirit
// as a library package: no logging (callers decide how/what to log),
// deterministic results, and immutable inputs — the engine never mutates the
// dataset it reads.
//
// Matching is tiered: exact title substring, related-field substring, then a
// fuzzy tier backed by the normalized Levenshtein similarity in this file.
package search

import "strings"

// Similarity returns a normalized edit-distance similarity in [0,1] between
// a and b, case-insensitively. Empty input on either side yields 0; identical
// non-empty strings yield 1.
//
// The score is 1 - d/max(len(a), len(b)) where d is the classic Levenshtein
// distance (unit-cost insert/delete/substitute). The full dynamic-programming
// matrix is computed so the distance matches the reference algorithm exactly.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	d := levenshtein(a, b)
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return 1 - float64(d)/float64(max)
}

// levenshtein computes the edit distance over bytes using the full
// (len(a)+1) x (len(b)+1) matrix.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)

	m := make([][]int, la+1)
	for i := range m {
		m[i] = make([]int, lb+1)
		m[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		m[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := m[i-1][j] + 1
			ins := m[i][j-1] + 1
			sub := m[i-1][j-1] + cost

			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			m[i][j] = best
		}
	}
	return m[la][lb]
}

// Package directory lists and searches hierarchy entries (companies,
// departments, operational areas) by name.
//
// All functions take the source list by value and return a new slice; the
// input is never reordered or filtered in place.
package directory

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameFunc extracts the display name used for sorting and matching.
type NameFunc[T any] func(T) string

// fold returns the case-folded form of s for caseless comparison.
// cases.Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether name contains term, ignoring case.
// A blank term matches everything.
func Matches(name, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(fold(name), fold(term))
}

// Filter returns the items whose name matches term.
func Filter[T any](items []T, term string, name NameFunc[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(name(it), term) {
			out = append(out, it)
		}
	}
	return out
}

// SortByName returns a copy of items ordered by name using English collation.
// Equal names keep their input order.
func SortByName[T any](items []T, name NameFunc[T]) []T {
	out := slices.Clone(items)
	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b T) int {
		return col.CompareString(name(a), name(b))
	})
	return out
}

// Suggest returns the name closest to term by edit distance, provided it is
// within maxDistance. It returns "" when term is blank or nothing is close.
func Suggest(names []string, term string, maxDistance int) string {
	term = fold(strings.TrimSpace(term))
	if term == "" || maxDistance <= 0 {
		return ""
	}

	best, bestDist := "", maxDistance+1
	for _, n := range names {
		d := levenshtein.ComputeDistance(fold(n), term)
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

package services

import (
	"cmp"
	"slices"
)

const (
	MaxCombos     = 5
	MaxCandidates = 10
	MaxFinalists  = 5
)

// SymmetricTrim narrows items to at most limit elements closest to target.
//
// Items are stable-sorted descending by metric; then, while too many remain,
// the first element is dropped when its overshoot (first-target) exceeds the
// undershoot of the last element (target-last), otherwise the last one is.
// The survivors are always a contiguous run of the sorted order.
// The input slice is not modified.
func SymmetricTrim[T any](items []T, metric func(T) float64, target float64, limit int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return cmp.Compare(metric(b), metric(a))
	})

	if limit < 0 {
		limit = 0
	}

	lo, hi := 0, len(sorted)
	for hi-lo > limit {
		overshoot := metric(sorted[lo]) - target
		undershoot := target - metric(sorted[hi-1])
		if overshoot > undershoot {
			lo++
		} else {
			hi--
		}
	}

	return sorted[lo:hi]
}

package svi

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// MinMaxScale maps values onto [0,1] so that the minimum is exactly 0 and
// the maximum exactly 1. A degenerate slice (fewer than two distinct
// values) scales to all zeros.
func MinMaxScale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, err := stats.Min(values)
	if err != nil {
		return out
	}
	hi, _ := stats.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// CompetitionRanks ranks values high-to-low using standard competition
// ranking: the highest value gets rank 1, tied values share a rank, and the
// next distinct value's rank increases by the number of tied entries.
//
// Both estimators consume this one utility so their tie handling is
// identical.
func CompetitionRanks(values []float64) []int {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})

	ranks := make([]int, n)
	for pos, i := range idx {
		if pos > 0 && values[i] == values[idx[pos-1]] {
			ranks[i] = ranks[idx[pos-1]]
			continue
		}
		ranks[i] = pos + 1
	}
	return ranks
}

// Percentiles converts competition ranks into percentiles in [0,1], where
// rank 1 (most vulnerable) maps to 1 and the lowest distinct value maps
// toward 0. Tied areas share a percentile.
func Percentiles(ranks []int) []float64 {
	n := len(ranks)
	out := make([]float64, n)
	if n <= 1 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, r := range ranks {
		out[i] = float64(n-r) / float64(n-1)
	}
	return out
}

package rfm

import (
	"sort"
)

// QuintileScores converts a series of values into quintile scores from 1 to
// 5, returned in the same order as the input. Every value gets a distinct
// rank: ties are broken by input position, so equal values keep their
// relative order. With invert=false higher values score higher; with
// invert=true the ordering is reversed (used for Recency, where fewer days
// since the last record is better).
//
// Fewer than 5 values cannot fill five buckets and fail with
// InsufficientDataError.
func QuintileScores(values []float64, invert bool) ([]int, error) {
	n := len(values)
	if n < 5 {
		return nil, &InsufficientDataError{Entities: n}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if invert {
			return values[idx[a]] > values[idx[b]]
		}
		return values[idx[a]] < values[idx[b]]
	})

	scores := make([]int, n)
	for pos, original := range idx {
		scores[original] = scoreForRank(pos+1, n)
	}
	return scores, nil
}

// scoreForRank maps rank 1..n onto five buckets via right-closed quantile
// edges over the rank range: score = ceil(5*(rank-1)/(n-1)), clamped to
// [1,5]. When n is divisible by 5 every score covers exactly n/5 ranks;
// otherwise the remainder lands at the extremes (n=7 gives bucket sizes
// 2,1,1,1,2).
func scoreForRank(rank, n int) int {
	if rank <= 1 {
		return 1
	}
	s := (5*(rank-1) + n - 2) / (n - 1)
	if s < 1 {
		s = 1
	}
	if s > 5 {
		s = 5
	}
	return s
}

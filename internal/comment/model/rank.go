package model

import "sort"

// RankedBefore reports whether a sorts before b under the ranking key:
// ups descending, then timestamp descending compared as raw strings.
func RankedBefore(a, b Comment) bool {
	if a.Ups != b.Ups {
		return a.Ups > b.Ups
	}
	return a.Timestamp > b.Timestamp
}

// SortByRank orders comments in place. The sort is stable so equal keys keep
// their input order.
func SortByRank(cs []Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		return RankedBefore(cs[i], cs[j])
	})
}

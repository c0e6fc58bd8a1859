package main

import "sort"

// Slot is one fixed position in a published leaderboard. A ranking is
// always exactly n slots long; positions without a qualifying entry are
// explicit empty slots, never dropped, so rendering must handle both
// cases.
type Slot[T any] struct {
	Entry  T
	Filled bool
}

// RankTop sorts the candidates descending by key, takes the first n,
// and right-pads with empty slots to exactly n. The sort is stable:
// equal keys keep their aggregation/collection order.
func RankTop[T any](candidates []T, n int, key func(T) float64) []Slot[T] {
	if n <= 0 {
		return nil
	}

	sorted := make([]T, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})

	slots := make([]Slot[T], n)
	for i := 0; i < n && i < len(sorted); i++ {
		slots[i] = Slot[T]{Entry: sorted[i], Filled: true}
	}
	return slots
}

// filledCount returns how many slots carry an entry.
func filledCount[T any](slots []Slot[T]) int {
	count := 0
	for _, slot := range slots {
		if slot.Filled {
			count++
		}
	}
	return count
}

// Package perm enumerates orderings of small index sets.
//
// The optimiser uses it to try every arrangement of a node's children when
// there are few enough of them. Permutations are produced lazily with Heap's
// algorithm, so callers can stop early without materialising n! slices.
package perm

import "iter"

// Seq returns [0, 1, ..., n-1]. For n <= 0 it returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// All yields permutations of [0, 1, ..., n-1], starting with the identity.
// If limit > 0 at most limit permutations are yielded.
//
// The yielded slice is reused between iterations; clone it to keep it.
func All(n, limit int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		p := Seq(n)
		if !yield(p) {
			return
		}
		count := 1
		state := make([]int, n)
		for i := 0; i < n; {
			if limit > 0 && count >= limit {
				return
			}
			if state[i] < i {
				if i&1 == 0 {
					p[0], p[i] = p[i], p[0]
				} else {
					p[state[i]], p[i] = p[i], p[state[i]]
				}
				count++
				if !yield(p) {
					return
				}
				state[i]++
				i = 0
			} else {
				state[i] = 0
				i++
			}
		}
	}
}

// Apply returns items reordered so that result[i] = items[p[i]].
func Apply[T any](items []T, p []int) []T {
	out := make([]T, len(p))
	for i, j := range p {
		out[i] = items[j]
	}
	return out
}

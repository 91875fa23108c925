package spatial

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// InsertOrder selects the order in which elements are inserted into a tree.
// Insertion order is what balances the tree: elements are inserted one by
// one with no rebalancing, so a sorted input inserted sequentially
// degenerates into a list.
type InsertOrder int

const (
	// DispersedOrder inserts elements in a strided shuffle of the input so
	// that early inserts are spread across the survey. Acquisition order is
	// almost always sorted in some header (shot number, receiver line), and
	// dispersing it keeps the tree approximately balanced. This is the
	// order to use unless the input is known to be pre-shuffled.
	DispersedOrder InsertOrder = iota

	// SequentialOrder inserts elements 0, 1, 2, ... as given.
	SequentialOrder
)

// dispersedOrder returns a permutation of [0, n) that spreads consecutive
// input indices apart.
//
// The permutation is built in passes over a shrinking stride nrat, starting
// at n and multiplied by 0.6 each pass until it reaches 0. Each pass visits
// indices offset+nrat/2, advancing by offset+nrat, and emits the ones not
// already emitted; offset is sqrt(nrat) when nrat > 6 and 0 otherwise. The
// final pass has nrat == 1 and sweeps every index, so the result is always
// a complete permutation.
func dispersedOrder(n int) []int {
	order := make([]int, 0, n)
	seen := bitset.New(uint(n))
	for nrat := n; nrat >= 1; nrat = int(float64(nrat) * 0.6) {
		nd := 0
		if nrat > 6 {
			nd = int(math.Sqrt(float64(nrat)))
		}
		for i := nd + nrat/2; i < n; i += nd + nrat {
			if !seen.Test(uint(i)) {
				seen.Set(uint(i))
				order = append(order, i)
			}
		}
	}
	return order
}

// sequentialOrder returns the identity permutation of [0, n).
func sequentialOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

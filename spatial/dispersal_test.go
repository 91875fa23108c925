package spatial

import (
	"sort"
	"testing"
)

// --- Dispersal order tests ---

func TestDispersedOrder_IsCompletePermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 8, 50, 100, 997} {
		order := dispersedOrder(n)
		if len(order) != n {
			t.Fatalf("n=%d: got %d indices, want %d", n, len(order), n)
		}
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				t.Fatalf("n=%d: sorted order[%d] = %d, want %d (not a permutation)", n, i, v, i)
			}
		}
	}
}

func TestDispersedOrder_KnownPrefix(t *testing.T) {
	// Pins the stride schedule: strides 100, 60, 36, 21, 12, ... with
	// offsets 10, 7, 6, 4, 3, ... The first pass emits the middle of the
	// survey, later passes fill in at shrinking strides.
	got := dispersedOrder(100)
	wantPrefix := []int{60, 37, 24, 66, 14, 39, 64, 89, 9}
	for i, want := range wantPrefix {
		if got[i] != want {
			t.Fatalf("order[%d] = %d, want %d (full prefix %v)", i, got[i], want, got[:len(wantPrefix)])
		}
	}
}

func TestDispersedOrder_SpreadsNeighbors(t *testing.T) {
	// Consecutive input indices should not be inserted consecutively at
	// the start: the first half of the order should draw from all over
	// the input, not from one end.
	const n = 1000
	order := dispersedOrder(n)

	lowHalf := 0
	for _, v := range order[:n/2] {
		if v < n/2 {
			lowHalf++
		}
	}
	if lowHalf < n/10 || lowHalf > 2*n/5 {
		t.Errorf("first half of order contains %d indices below n/2, want roughly balanced (n=%d)", lowHalf, n)
	}
}

func TestSequentialOrder_Identity(t *testing.T) {
	order := sequentialOrder(5)
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

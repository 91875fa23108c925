package spatial

import (
	"math/rand"
	"sort"
	"testing"
)

// --- Range query tests ---

// cornerPoints is the five-station layout used across the query tests:
// four corners of a 10x10 square plus its center.
func cornerPoints(t *testing.T) *Points {
	t.Helper()
	pts, err := NewPoints(
		[]float64{0, 10, 0, 10, 5},
		[]float64{0, 0, 10, 10, 5},
	)
	if err != nil {
		t.Fatalf("NewPoints: %v", err)
	}
	return pts
}

func TestFindIn_Basic(t *testing.T) {
	tree, err := NewTree(cornerPoints(t), DispersedOrder)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	got := tree.FindIn(Box([]float64{0, 0}, []float64{6, 6}), nil)
	sort.Ints(got)
	want := []int{0, 4}
	if !equalInts(got, want) {
		t.Errorf("FindIn([0,6)x[0,6)) = %v, want %v", got, want)
	}
}

func TestFindIn_HalfOpenBounds(t *testing.T) {
	// Min is inside, Max is outside.
	pts, _ := NewPoints([]float64{0, 1, 2, 3, 4})
	tree, _ := NewTree(pts, DispersedOrder)

	got := tree.FindIn(Box([]float64{1}, []float64{3}), nil)
	sort.Ints(got)
	if !equalInts(got, []int{1, 2}) {
		t.Errorf("FindIn([1,3)) = %v, want [1 2]", got)
	}
}

func TestFindIn_UniverseReturnsAll(t *testing.T) {
	tree, _ := NewTree(cornerPoints(t), DispersedOrder)

	got := tree.FindIn(Universe(), nil)
	sort.Ints(got)
	if !equalInts(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("FindIn(Universe) = %v, want all five elements", got)
	}
}

func TestFindIn_ImpossibleBox(t *testing.T) {
	tree, _ := NewTree(cornerPoints(t), DispersedOrder)

	// Min above Max contains nothing; not an error.
	got := tree.FindIn(Box([]float64{6, 6}, []float64{0, 0}), nil)
	if len(got) != 0 {
		t.Errorf("FindIn(inverted box) = %v, want empty", got)
	}
}

func TestFindIn_ReusesResultSlice(t *testing.T) {
	tree, _ := NewTree(cornerPoints(t), DispersedOrder)

	buf := make([]int, 0, 8)
	got := tree.FindIn(Universe(), buf)
	if len(got) != 5 {
		t.Fatalf("got %d results, want 5", len(got))
	}
	if &got[0] != &buf[:1][0] {
		t.Errorf("result did not reuse the supplied buffer")
	}

	// Truncate and query again; results must not accumulate.
	got = tree.FindIn(Box([]float64{0, 0}, []float64{6, 6}), got[:0])
	if len(got) != 2 {
		t.Errorf("second query returned %d results, want 2", len(got))
	}
}

func TestFindIn_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 300

	// Integer-valued coordinates so box edges land exactly on points and
	// exercise the half-open bounds.
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(rng.Intn(50))
		ys[i] = float64(rng.Intn(50))
	}
	pts, _ := NewPoints(xs, ys)

	for _, order := range []InsertOrder{DispersedOrder, SequentialOrder} {
		tree, _ := NewTree(pts, order)
		for trial := 0; trial < 50; trial++ {
			lo := []float64{float64(rng.Intn(50)), float64(rng.Intn(50))}
			hi := []float64{lo[0] + float64(rng.Intn(20)), lo[1] + float64(rng.Intn(20))}
			box := Box(lo, hi)

			got := tree.FindIn(box, nil)
			sort.Ints(got)

			var want []int
			for e := 0; e < n; e++ {
				if xs[e] >= lo[0] && xs[e] < hi[0] && ys[e] >= lo[1] && ys[e] < hi[1] {
					want = append(want, e)
				}
			}
			if !equalInts(got, want) {
				t.Fatalf("order=%d trial=%d box=%v..%v: got %v, want %v", order, trial, lo, hi, got, want)
			}
		}
	}
}

// --- Helpers ---

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

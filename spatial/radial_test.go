package spatial

import (
	"errors"
	"math/rand"
	"testing"
)

// --- Expanding search tests ---

func TestSearcher_GrowsUntilFound(t *testing.T) {
	tree, err := NewTree(cornerPoints(t), DispersedOrder)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	s, err := NewSearcher(tree, SearchConfig{
		Radius:   1,
		Growth:   2,
		Universe: Box([]float64{0, 0}, []float64{11, 11}),
	})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	// Radius 1 around (4,4) misses everything; radius 2 catches the
	// center station.
	res := s.Find([]float64{4, 4})
	if res.Count != 1 || res.Elem != 4 || res.Dist2 != 2 {
		t.Errorf("Find((4,4)) = %+v, want {Elem:4 Dist2:2 Count:1}", res.Match)
	}
	if res.Cycles != 2 {
		t.Errorf("Cycles = %d, want 2", res.Cycles)
	}
}

func TestSearcher_ExhaustsBoundedUniverse(t *testing.T) {
	// The only station lies outside the declared universe, so the search
	// gives up once the box covers the universe.
	pts, _ := NewPoints([]float64{100}, []float64{100})
	tree, _ := NewTree(pts, DispersedOrder)
	s, err := NewSearcher(tree, SearchConfig{
		Radius:   1,
		Growth:   2,
		Universe: Box([]float64{0, 0}, []float64{10, 10}),
	})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	res := s.Find([]float64{5, 5})
	if res.Count != 0 {
		t.Errorf("Count = %d, want 0 when the universe holds no station", res.Count)
	}
	if res.Cycles != 4 {
		t.Errorf("Cycles = %d, want 4 (radius 1, 2, 4, then clamped at 8)", res.Cycles)
	}
}

func TestSearcher_CornerHitTriggersRequery(t *testing.T) {
	// Element 0 sits in the corner of the first box at distance 2.687,
	// beyond the box half-width 2. Element 1 is closer at 2.5 but outside
	// the first box, so a correct search needs the widened second query.
	pts, _ := NewPoints(
		[]float64{1.9, 2.5},
		[]float64{1.9, 0},
	)
	tree, _ := NewTree(pts, DispersedOrder)
	s, _ := NewSearcher(tree, SearchConfig{Radius: 2, Growth: 2})

	res := s.Find([]float64{0, 0})
	if res.Elem != 1 || !almostEqual(res.Dist2, 6.25, floatTol) {
		t.Errorf("Find = %+v, want element 1 at Dist2 6.25", res.Match)
	}
	if res.Cycles != 2 {
		t.Errorf("Cycles = %d, want 2 (corner hit plus widened re-query)", res.Cycles)
	}
}

func TestSearcher_CarriedRadius(t *testing.T) {
	pts, _ := NewPoints([]float64{7, 17})
	tree, _ := NewTree(pts, DispersedOrder)

	carry, _ := NewSearcher(tree, SearchConfig{Radius: 1, Growth: 2, Carry: true})
	res := carry.Find([]float64{0})
	if res.Elem != 0 || res.Cycles != 4 {
		t.Fatalf("first Find = %+v cycles=%d, want element 0 in 4 cycles", res.Match, res.Cycles)
	}

	// The second target needs a similar radius; carrying the grown one
	// answers in a single cycle where a fresh searcher needs three.
	res = carry.Find([]float64{10})
	if res.Elem != 0 || res.Cycles != 1 {
		t.Errorf("carried Find = %+v cycles=%d, want element 0 in 1 cycle", res.Match, res.Cycles)
	}

	fresh, _ := NewSearcher(tree, SearchConfig{Radius: 1, Growth: 2})
	res = fresh.Find([]float64{10})
	if res.Cycles != 3 {
		t.Errorf("fresh Find cycles = %d, want 3", res.Cycles)
	}
}

func TestSearcher_EmptyTree(t *testing.T) {
	pts, _ := NewPoints([]float64{})
	tree, _ := NewTree(pts, DispersedOrder)
	s, err := NewSearcher(tree, SearchConfig{Radius: 1})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	res := s.Find([]float64{0})
	if res.Count != 0 || res.Cycles != 0 {
		t.Errorf("Find on empty tree = %+v cycles=%d, want no result and no cycles", res.Match, res.Cycles)
	}
}

func TestSearcher_FindsTrueNearest(t *testing.T) {
	// Whatever the starting radius, the search must land on the same
	// element a full scan picks.
	rng := rand.New(rand.NewSource(11))
	const n = 200

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = rng.Float64() * 1000
		ys[i] = rng.Float64() * 1000
	}
	pts, _ := NewPoints(xs, ys)
	tree, _ := NewTree(pts, DispersedOrder)
	universe := Box([]float64{0, 0}, []float64{1000, 1000})

	for _, radius := range []float64{0.5, 10, 400} {
		s, err := NewSearcher(tree, SearchConfig{Radius: radius, Growth: 3, Universe: universe})
		if err != nil {
			t.Fatalf("NewSearcher: %v", err)
		}
		for trial := 0; trial < 60; trial++ {
			target := []float64{rng.Float64() * 1000, rng.Float64() * 1000}
			res := s.Find(target)
			want := bruteNearest([][]float64{xs, ys}, target, universe, nil)
			if res.Count == 0 || res.Elem != want.Elem || res.Dist2 != want.Dist2 {
				t.Fatalf("radius=%v trial=%d target=%v: got %+v, want %+v", radius, trial, target, res.Match, want)
			}
		}
	}
}

func TestSearcher_InactiveDimensionSpansUniverse(t *testing.T) {
	// Offset is the third coordinate and does not participate: the box
	// never grows or shrinks in it, so stations at any offset inside the
	// universe are candidates from the first cycle.
	pts, _ := NewPoints(
		[]float64{0, 3},
		[]float64{0, 0},
		[]float64{900, 10},
	)
	tree, _ := NewTree(pts, DispersedOrder)
	s, _ := NewSearcher(tree, SearchConfig{
		Radius:   5,
		Active:   []bool{true, true, false},
		Universe: Box([]float64{-10, -10, 0}, []float64{10, 10, 1000}),
	})

	res := s.Find([]float64{1, 0, 0})
	if res.Elem != 0 || res.Dist2 != 1 {
		t.Errorf("Find = %+v, want element 0 at Dist2 1 (offset ignored)", res.Match)
	}
	if res.Cycles != 1 {
		t.Errorf("Cycles = %d, want 1", res.Cycles)
	}
}

func TestNewSearcher_Validation(t *testing.T) {
	pts, _ := NewPoints([]float64{1}, []float64{1})
	tree, _ := NewTree(pts, DispersedOrder)

	cases := []struct {
		name string
		cfg  SearchConfig
	}{
		{"zero radius", SearchConfig{Radius: 0}},
		{"negative radius", SearchConfig{Radius: -3}},
		{"growth one", SearchConfig{Radius: 1, Growth: 1}},
		{"shrinking growth", SearchConfig{Radius: 1, Growth: 0.5}},
		{"short active flags", SearchConfig{Radius: 1, Active: []bool{true}}},
	}
	for _, tc := range cases {
		if _, err := NewSearcher(tree, tc.cfg); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: error = %v, want ErrConfig", tc.name, err)
		}
	}

	if _, err := NewSearcher(nil, SearchConfig{Radius: 1}); !errors.Is(err, ErrConfig) {
		t.Errorf("nil tree: error = %v, want ErrConfig", err)
	}

	cfg := DefaultSearchConfig()
	if cfg.Growth != 2 {
		t.Errorf("DefaultSearchConfig().Growth = %v, want 2", cfg.Growth)
	}
}

package spatial

import (
	"fmt"
	"math"
)

// SearchConfig controls an expanding-radius search.
// Start with [DefaultSearchConfig] and override the fields you need.
type SearchConfig struct {
	// Radius is the half-width of the first search box around the target.
	// Pick it near the expected station spacing: too small costs extra
	// growth cycles, too large scans more of the tree than needed.
	// Must be > 0. No default.
	Radius float64

	// Growth multiplies the radius after a cycle that found nothing.
	// Must be > 1. Default: 2.
	Growth float64

	// Active selects the dimensions that participate in the distance and
	// in box growth. Non-participating dimensions keep the full Universe
	// interval in every cycle, so they constrain containment but never the
	// search. nil means all dimensions participate.
	Active []bool

	// Universe bounds the search box. The box is clamped to it each cycle,
	// and a search that has grown to cover it in every participating
	// dimension without finding anything stops. The zero value means
	// unbounded. Supply real survey extents when you have them: with an
	// unbounded universe an exhaustive miss gives up only after the radius
	// overflows.
	Universe Extent

	// Carry makes each search start from the radius the previous
	// successful search ended with instead of Radius. With targets in
	// acquisition order the needed radius varies slowly, so carrying it
	// usually answers in one cycle.
	Carry bool
}

// DefaultSearchConfig returns a SearchConfig with reasonable defaults.
// Radius has no default and must be set.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Growth:   2,
		Universe: Universe(),
	}
}

// Searcher answers nearest-element queries by growing a box around each
// target until it catches something or provably covers the whole survey.
// It is stateful when Carry is set and must not be shared between
// goroutines; give each goroutine its own Searcher over the shared Tree.
type Searcher struct {
	tree   *Tree
	cfg    SearchConfig
	radius float64 // carried starting radius; 0 until the first find
}

// NewSearcher validates cfg against tree and returns a Searcher.
func NewSearcher(tree *Tree, cfg SearchConfig) (*Searcher, error) {
	if tree == nil {
		return nil, fmt.Errorf("spatial: nil tree: %w", ErrConfig)
	}
	if cfg.Growth == 0 {
		cfg.Growth = 2
	}
	if cfg.Universe == (Extent{}) {
		cfg.Universe = Universe()
	}
	if !(cfg.Radius > 0) {
		return nil, fmt.Errorf("spatial: search radius must be > 0, got %v: %w", cfg.Radius, ErrConfig)
	}
	if !(cfg.Growth > 1) {
		return nil, fmt.Errorf("spatial: search growth must be > 1, got %v: %w", cfg.Growth, ErrConfig)
	}
	if cfg.Active != nil && len(cfg.Active) < tree.Dims() {
		return nil, fmt.Errorf("spatial: %d active flags for %d dimensions: %w", len(cfg.Active), tree.Dims(), ErrConfig)
	}
	return &Searcher{tree: tree, cfg: cfg}, nil
}

// Result is the outcome of an expanding search. Count == 0 means the
// search exhausted the universe without finding an element.
type Result struct {
	Match

	// Cycles is the number of box queries the search issued. Values above
	// 1 or 2 on most targets mean Radius is set far from the real station
	// spacing.
	Cycles int
}

// Find locates the element nearest target among those the universe admits.
//
// Each cycle queries the box [target-R, target+R) in every participating
// dimension, clamped to the universe. An empty cycle grows R by Growth and
// retries; once the box covers the universe in every participating
// dimension an empty cycle ends the search instead. A hit at distance r
// beyond R (possible in a box corner) re-queries once with the box widened
// to r plus a small margin, so the returned element is the true nearest,
// not just the nearest corner resident.
func (s *Searcher) Find(target []float64) Result {
	var res Result
	if s.tree.Len() == 0 {
		return res
	}

	r0 := s.cfg.Radius
	if s.cfg.Carry && s.radius > 0 {
		r0 = s.radius
	}

	radius := r0
	for {
		res.Cycles++
		box, covered := s.box(target, radius)

		m := s.tree.Nearest(target, box, s.cfg.Active)
		if m.Count == 0 {
			if covered {
				return res
			}
			radius *= s.cfg.Growth
			continue
		}

		if r := math.Sqrt(m.Dist2); r > radius && !covered {
			radius = r * 1.001
			continue
		}

		res.Match = m
		if s.cfg.Carry {
			s.radius = radius
		}
		return res
	}
}

// box builds the clamped search box for one cycle and reports whether it
// already covers the universe in every participating dimension.
func (s *Searcher) box(target []float64, radius float64) (Extent, bool) {
	box := s.cfg.Universe
	covered := true
	for d := 0; d < s.tree.dims; d++ {
		if s.cfg.Active != nil && !s.cfg.Active[d] {
			continue
		}
		lo := target[d] - radius
		hi := target[d] + radius
		if lo > s.cfg.Universe.Min[d] {
			box.Min[d] = lo
			covered = false
		}
		if hi < s.cfg.Universe.Max[d] {
			box.Max[d] = hi
			covered = false
		}
	}
	return box, covered
}

package spatial

import "math"

// Extent is an axis-aligned box: per dimension the half-open interval
// [Min[d], Max[d]). A coordinate equal to Min is inside, equal to Max is
// outside. An extent with Min[d] >= Max[d] in any dimension contains
// nothing; queries against such a box return empty results rather than
// errors.
type Extent struct {
	Min [MaxDims]float64
	Max [MaxDims]float64
}

// Universe returns the extent that contains every point: (-Inf, +Inf)
// in every dimension up to MaxDims.
func Universe() Extent {
	var e Extent
	for d := 0; d < MaxDims; d++ {
		e.Min[d] = math.Inf(-1)
		e.Max[d] = math.Inf(1)
	}
	return e
}

// Box returns an extent with the given bounds in the leading dimensions
// and (-Inf, +Inf) in the rest. min and max must have equal length.
func Box(min, max []float64) Extent {
	e := Universe()
	for d := 0; d < len(min) && d < MaxDims; d++ {
		e.Min[d] = min[d]
	}
	for d := 0; d < len(max) && d < MaxDims; d++ {
		e.Max[d] = max[d]
	}
	return e
}

// Contains reports whether the point with the given coordinates lies
// inside the extent, checking the first dims dimensions.
func (e *Extent) Contains(coords []float64, dims int) bool {
	for d := 0; d < dims; d++ {
		if coords[d] < e.Min[d] || coords[d] >= e.Max[d] {
			return false
		}
	}
	return true
}

// Empty reports whether the extent can contain no point in the first
// dims dimensions.
func (e *Extent) Empty(dims int) bool {
	for d := 0; d < dims; d++ {
		if e.Min[d] >= e.Max[d] {
			return true
		}
	}
	return false
}

package gather

import "math"

// Compare orders two composite keys lexicographically over their first
// dims fields: the first unequal field decides. Returns -1, 0, or 1.
// Comparison is exact; there is no tolerance. The dimension count is
// always explicit so an index never depends on ambient state.
func Compare(a, b []float64, dims int) int {
	for d := 0; d < dims; d++ {
		switch {
		case a[d] < b[d]:
			return -1
		case a[d] > b[d]:
			return 1
		}
	}
	return 0
}

// Quantize maps a continuous header value onto a bin number: the nearest
// integer count of cells from origin. Values within half a cell of the
// same bin center quantize equally, which is what makes exact key
// comparison usable on coordinates.
func Quantize(v, origin, cell float64) float64 {
	return math.Round((v - origin) / cell)
}

// Center is the inverse of Quantize: the coordinate at the center of bin.
func Center(bin, origin, cell float64) float64 {
	return origin + bin*cell
}

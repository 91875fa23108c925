package spatial

import (
	"errors"
	"fmt"
)

// MaxDims is the largest coordinate count a tree will index. Survey keys
// are small composites (x/y, inline/crossline, offset planes); nine covers
// every header combination the utilities build trees over.
const MaxDims = 9

// ErrConfig reports an invalid configuration: bad dimension counts,
// mismatched column lengths, or out-of-range search parameters. All
// constructor and search errors in this package wrap ErrConfig, so
// callers can test for the category with errors.Is.
var ErrConfig = errors.New("invalid configuration")

// Source supplies point coordinates to a tree. Coordinates are addressed
// by element id in [0, Len()) and dimension in [0, Dims()). Implementations
// must be safe for concurrent reads and must not change while a tree built
// over them is in use.
type Source interface {
	// Len returns the number of elements.
	Len() int
	// Dims returns the number of coordinate dimensions, in [1, MaxDims].
	Dims() int
	// Coord returns the coordinate of element elem in dimension dim.
	Coord(elem, dim int) float64
}

// Points is a Source backed by parallel coordinate columns, one []float64
// per dimension. Column k holds coordinate k of every element; element i
// is (cols[0][i], cols[1][i], ...). The columns are referenced, not copied.
type Points struct {
	cols [][]float64
	n    int
}

// NewPoints builds a Points source over the given coordinate columns.
// At least one column is required, all columns must have equal length,
// and the column count must not exceed MaxDims.
func NewPoints(cols ...[]float64) (*Points, error) {
	if len(cols) < 1 {
		return nil, fmt.Errorf("spatial: need at least one coordinate column: %w", ErrConfig)
	}
	if len(cols) > MaxDims {
		return nil, fmt.Errorf("spatial: %d coordinate columns exceeds MaxDims=%d: %w", len(cols), MaxDims, ErrConfig)
	}
	n := len(cols[0])
	for d, col := range cols {
		if len(col) != n {
			return nil, fmt.Errorf("spatial: column %d has %d elements, column 0 has %d: %w", d, len(col), n, ErrConfig)
		}
	}
	return &Points{cols: cols, n: n}, nil
}

func (p *Points) Len() int  { return p.n }
func (p *Points) Dims() int { return len(p.cols) }

func (p *Points) Coord(elem, dim int) float64 { return p.cols[dim][elem] }

// Column returns the backing slice for dimension dim.
func (p *Points) Column(dim int) []float64 { return p.cols[dim] }

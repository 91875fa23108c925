package geom

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Grid is a rectangular surface sampled on regular nodes: datum
// elevations, replacement velocities, weathering depths. Rows run
// along y, columns along x. Positions outside the grid clamp to the
// nearest edge, so queries never fail.
type Grid struct {
	vals   *mat.Dense
	x0, y0 float64
	dx, dy float64
}

// NewGrid returns a zero-valued grid with the given origin, node
// spacing and node counts.
func NewGrid(x0, y0, dx, dy float64, rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("geom: grid needs at least one node, got %dx%d", rows, cols)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("geom: grid spacing must be positive, got dx=%v dy=%v", dx, dy)
	}
	return &Grid{
		vals: mat.NewDense(rows, cols, nil),
		x0:   x0, y0: y0,
		dx: dx, dy: dy,
	}, nil
}

// Rows returns the node count along y.
func (g *Grid) Rows() int { r, _ := g.vals.Dims(); return r }

// Cols returns the node count along x.
func (g *Grid) Cols() int { _, c := g.vals.Dims(); return c }

// NodeX returns the x coordinate of column col.
func (g *Grid) NodeX(col int) float64 { return g.x0 + float64(col)*g.dx }

// NodeY returns the y coordinate of row row.
func (g *Grid) NodeY(row int) float64 { return g.y0 + float64(row)*g.dy }

// Node returns the stored value at a node.
func (g *Grid) Node(row, col int) float64 { return g.vals.At(row, col) }

// SetNode stores a value at a node.
func (g *Grid) SetNode(row, col int, v float64) { g.vals.Set(row, col, v) }

// Fill evaluates f at every node position and stores the result.
func (g *Grid) Fill(f func(x, y float64) float64) {
	rows, cols := g.vals.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.vals.Set(r, c, f(g.NodeX(c), g.NodeY(r)))
		}
	}
}

// At returns the bilinear interpolation of the four surrounding nodes
// at (x, y), clamped to the grid edges.
func (g *Grid) At(x, y float64) float64 {
	rows, cols := g.vals.Dims()
	c0, tx := cellFrac(x, g.x0, g.dx, cols)
	r0, ty := cellFrac(y, g.y0, g.dy, rows)
	c1, r1 := c0, r0
	if cols > 1 {
		c1 = c0 + 1
	}
	if rows > 1 {
		r1 = r0 + 1
	}
	v0 := g.vals.At(r0, c0) + tx*(g.vals.At(r0, c1)-g.vals.At(r0, c0))
	v1 := g.vals.At(r1, c0) + tx*(g.vals.At(r1, c1)-g.vals.At(r1, c0))
	return v0 + ty*(v1-v0)
}

// cellFrac maps a coordinate to a cell index and the fraction across
// it, clamping to [0, n-1] node range.
func cellFrac(v, origin, step float64, n int) (int, float64) {
	if n == 1 {
		return 0, 0
	}
	f := (v - origin) / step
	if f <= 0 {
		return 0, 0
	}
	if f >= float64(n-1) {
		return n - 2, 1
	}
	i := int(f)
	if i > n-2 {
		i = n - 2
	}
	return i, f - float64(i)
}

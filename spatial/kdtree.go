package spatial

import "fmt"

// nilNode marks an absent child in the node arena.
const nilNode = int32(-1)

// node is one arena entry. elem is the element id in the Source; left and
// right are arena indices or nilNode.
type node struct {
	elem  int32
	left  int32
	right int32
}

// Tree is a k-d tree over a fixed point set. Nodes live in a flat arena
// appended in insertion order, so node 0 is always the root of a non-empty
// tree. The splitting axis is the depth modulo the dimension count;
// elements strictly less than a node on its axis go left, ties and greater
// go right.
//
// There is no rebalancing: balance comes entirely from insertion order
// (see InsertOrder). The tree is immutable once built and safe for
// concurrent queries.
type Tree struct {
	src   Source
	cols  [][]float64 // direct column access when src is *Points
	dims  int
	n     int
	nodes []node
}

// NewTree builds a tree over every element of src, inserting in the given
// order. Building over an empty source yields a valid empty tree.
func NewTree(src Source, order InsertOrder) (*Tree, error) {
	if src == nil {
		return nil, fmt.Errorf("spatial: nil source: %w", ErrConfig)
	}
	dims := src.Dims()
	if dims < 1 || dims > MaxDims {
		return nil, fmt.Errorf("spatial: source has %d dimensions, want 1 to %d: %w", dims, MaxDims, ErrConfig)
	}
	n := src.Len()
	if n > 1<<31-1 {
		return nil, fmt.Errorf("spatial: source has %d elements, arena indices are 32-bit: %w", n, ErrConfig)
	}

	t := &Tree{
		src:   src,
		dims:  dims,
		n:     n,
		nodes: make([]node, 0, n),
	}
	if p, ok := src.(*Points); ok {
		t.cols = p.cols
	}

	var ord []int
	switch order {
	case DispersedOrder:
		ord = dispersedOrder(n)
	case SequentialOrder:
		ord = sequentialOrder(n)
	default:
		return nil, fmt.Errorf("spatial: unknown insert order %d: %w", order, ErrConfig)
	}

	for _, e := range ord {
		t.insert(int32(e))
	}
	return t, nil
}

// insert appends a node for elem and links it by descending from the root.
func (t *Tree) insert(elem int32) {
	ni := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{elem: elem, left: nilNode, right: nilNode})
	if ni == 0 {
		return
	}

	c := int32(0)
	for depth := 0; ; depth++ {
		axis := depth % t.dims
		nd := &t.nodes[c]
		if t.coord(elem, axis) < t.coord(nd.elem, axis) {
			if nd.left == nilNode {
				nd.left = ni
				return
			}
			c = nd.left
		} else {
			if nd.right == nilNode {
				nd.right = ni
				return
			}
			c = nd.right
		}
	}
}

// coord reads one coordinate, bypassing the interface when columns are
// directly available.
func (t *Tree) coord(elem int32, dim int) float64 {
	if t.cols != nil {
		return t.cols[dim][elem]
	}
	return t.src.Coord(int(elem), dim)
}

// Len returns the number of indexed elements.
func (t *Tree) Len() int { return t.n }

// Dims returns the coordinate dimension count.
func (t *Tree) Dims() int { return t.dims }

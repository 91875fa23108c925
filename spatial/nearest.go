package spatial

// Match is the answer to a nearest-element query.
type Match struct {
	// Elem is the id of the closest element inside the box. When several
	// elements share the minimal distance, Elem is the numerically largest
	// of their ids. Meaningless when Count is 0.
	Elem int

	// Dist2 is the squared distance from the target to Elem, summed over
	// the participating dimensions only.
	Dist2 float64

	// Count is the number of box elements found at distance Dist2.
	// 0 means the box contains no element at all.
	Count int
}

// Nearest returns the element inside box that is closest to target.
//
// Distance is the squared Euclidean distance over the dimensions selected
// by active; a nil active selects all dimensions. Box containment is
// always checked in every dimension, whether or not it participates in
// the distance. target must supply at least Dims coordinates and active,
// when non-nil, at least Dims flags.
//
// Every element inside the box is inspected, so Count is exact: with
// Count > 1 the caller knows the match was a tie.
func (t *Tree) Nearest(target []float64, box Extent, active []bool) Match {
	var m Match
	if len(t.nodes) == 0 || box.Empty(t.dims) {
		return m
	}
	t.nearest(0, 0, &box, target, active, &m)
	return m
}

func (t *Tree) nearest(ni int32, depth int, box *Extent, target []float64, active []bool, m *Match) {
	nd := t.nodes[ni]

	inside := true
	for d := 0; d < t.dims; d++ {
		c := t.coord(nd.elem, d)
		if c < box.Min[d] || c >= box.Max[d] {
			inside = false
			break
		}
	}
	if inside {
		var d2 float64
		for d := 0; d < t.dims; d++ {
			if active != nil && !active[d] {
				continue
			}
			dd := t.coord(nd.elem, d) - target[d]
			d2 += dd * dd
		}
		switch {
		case m.Count == 0 || d2 < m.Dist2:
			m.Elem = int(nd.elem)
			m.Dist2 = d2
			m.Count = 1
		case d2 == m.Dist2:
			m.Count++
			if int(nd.elem) > m.Elem {
				m.Elem = int(nd.elem)
			}
		}
	}

	axis := depth % t.dims
	c := t.coord(nd.elem, axis)
	if nd.left != nilNode && c >= box.Min[axis] {
		t.nearest(nd.left, depth+1, box, target, active, m)
	}
	if nd.right != nilNode && c < box.Max[axis] {
		t.nearest(nd.right, depth+1, box, target, active, m)
	}
}

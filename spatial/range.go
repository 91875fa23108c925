package spatial

// FindIn appends the ids of every element inside box to out and returns
// the extended slice. Pass a previously returned slice truncated to zero
// length to reuse its capacity across queries. Result order is
// unspecified; no id appears twice. A box that is empty in any dimension
// yields no results.
func (t *Tree) FindIn(box Extent, out []int) []int {
	if len(t.nodes) == 0 || box.Empty(t.dims) {
		return out
	}
	return t.findIn(0, 0, &box, out)
}

func (t *Tree) findIn(ni int32, depth int, box *Extent, out []int) []int {
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
		out = append(out, int(nd.elem))
	}

	// Left holds elements strictly below this node on the axis, right holds
	// ties and above. Descend only into the side the box can reach.
	axis := depth % t.dims
	c := t.coord(nd.elem, axis)
	if nd.left != nilNode && c >= box.Min[axis] {
		out = t.findIn(nd.left, depth+1, box, out)
	}
	if nd.right != nilNode && c < box.Max[axis] {
		out = t.findIn(nd.right, depth+1, box, out)
	}
	return out
}

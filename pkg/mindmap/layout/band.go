package layout

// bandWalk places every subtree in its own breadth band: sibling bands are
// laid side by side in input order, separated by the separation of their
// facing boundary nodes, and each parent is centered between its first and
// last child. Unlike contour packing, bands never interleave.
func (w *walker) bandWalk() {
	type extent struct {
		lo, hi         float64 // relative to the subtree root
		loNode, hiNode *wnode
	}
	ext := make(map[*wnode]extent, len(w.order))

	for _, v := range postOrder(w.root) {
		if len(v.children) == 0 {
			ext[v] = extent{loNode: v, hiNode: v}
			continue
		}

		// Offsets of each child relative to the first child.
		offset := 0.0
		for i, c := range v.children {
			if i > 0 {
				prev, cur := ext[v.children[i-1]], ext[c]
				offset = v.children[i-1].prelim + prev.hi - cur.lo + w.separation(prev.hiNode, cur.loNode)
			}
			c.prelim = offset
		}
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2

		e := extent{loNode: v, hiNode: v}
		for _, c := range v.children {
			c.mod = c.prelim - mid
			ce := ext[c]
			if lo := c.mod + ce.lo; lo < e.lo {
				e.lo, e.loNode = lo, ce.loNode
			}
			if hi := c.mod + ce.hi; hi > e.hi {
				e.hi, e.hiNode = hi, ce.hiNode
			}
		}
		ext[v] = e
	}

	// mod holds each node's offset from its parent; accumulate top-down.
	w.root.out.BreadthCoord = 0
	for _, v := range w.order[1:] {
		v.out.BreadthCoord = v.parent.out.BreadthCoord + v.mod
	}
}

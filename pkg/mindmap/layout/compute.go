package layout

import (
	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// Compute positions root on the given canvas.
//
// The result is a fresh tree of [PositionedNode] values in the same order as
// the input; root itself is only read. Compute is deterministic: equal inputs
// produce equal coordinates.
func Compute(root *tree.Node, canvas Canvas, margins Margins, opts ...Option) (*Layout, error) {
	if root == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "layout: nil root")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate(canvas, margins, cfg); err != nil {
		return nil, err
	}

	w := newWalker(root, cfg.separation)
	if cfg.contour {
		w.contourWalk()
	} else {
		w.bandWalk()
	}

	breadthExtent := canvas.Height - margins.Top - margins.Bottom
	depthExtent := cfg.depthFraction * canvas.Width
	bounds := w.scale(breadthExtent, depthExtent, cfg.minSeparation)

	return &Layout{
		Root:          w.root.out,
		Canvas:        canvas,
		Margins:       margins,
		Bounds:        bounds,
		NodeCount:     len(w.order),
		MaxGeneration: w.maxGen,
	}, nil
}

// =============================================================================
// Tidy tree walker
// =============================================================================

// wnode carries the per-node bookkeeping of the Buchheim walk.
type wnode struct {
	out      *PositionedNode
	parent   *wnode
	children []*wnode
	index    int

	prelim float64
	mod    float64
	change float64
	shift  float64
	thread *wnode

	ancestor        *wnode // a: ancestor used when moving subtrees
	defaultAncestor *wnode // A: default ancestor of this node's children
}

type walker struct {
	sep     SeparationFunc
	virtual *wnode   // parent of root, holds the final offset
	root    *wnode
	order   []*wnode // pre-order
	maxGen  int
}

func newWalker(root *tree.Node, sep SeparationFunc) *walker {
	w := &walker{sep: sep, virtual: &wnode{}}
	w.root = w.mirror(root, tree.Path{}, 0, 0)
	w.root.parent = w.virtual
	w.virtual.children = []*wnode{w.root}
	return w
}

// mirror builds the walker tree and the output tree in one pre-order pass.
func (w *walker) mirror(n *tree.Node, p tree.Path, gen, index int) *wnode {
	out := &PositionedNode{Node: n, Path: p, Generation: gen}
	wn := &wnode{out: out, index: index}
	wn.ancestor = wn
	w.order = append(w.order, wn)
	w.maxGen = max(w.maxGen, gen)

	if len(n.Children) > 0 {
		wn.children = make([]*wnode, len(n.Children))
		out.Children = make([]*PositionedNode, len(n.Children))
		for i, c := range n.Children {
			child := w.mirror(c, p.Child(i), gen+1, i)
			child.parent = wn
			wn.children[i] = child
			out.Children[i] = child.out
		}
	}
	return wn
}

func (w *walker) separation(a, b *wnode) float64 {
	s := w.sep(a.out, b.out)
	if !(s > 0) || !finite(s) {
		return 1
	}
	return s
}

// contourWalk is the Buchheim first and second walk.
func (w *walker) contourWalk() {
	for _, v := range postOrder(w.root) {
		w.firstWalk(v)
	}
	w.virtual.mod = -w.root.prelim
	for _, v := range w.order {
		v.out.BreadthCoord = v.prelim + v.parent.mod
		v.mod += v.parent.mod
	}
}

// postOrder lists children left to right before their parent, without
// recursion.
func postOrder(root *wnode) []*wnode {
	var next []*wnode
	stack := []*wnode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		next = append(next, n)
		stack = append(stack, n.children...)
	}
	for i, j := 0, len(next)-1; i < j; i, j = i+1, j-1 {
		next[i], next[j] = next[j], next[i]
	}
	return next
}

func (w *walker) firstWalk(v *wnode) {
	siblings := v.parent.children
	var left *wnode
	if v.index > 0 {
		left = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if left != nil {
			v.prelim = left.prelim + w.separation(v, left)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if left != nil {
		v.prelim = left.prelim + w.separation(v, left)
	}

	anc := v.parent.defaultAncestor
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defaultAncestor = w.apportion(v, left, anc)
}

// apportion pushes v's subtree right until its left contour clears the right
// contour of everything to its left, threading contours as it goes.
func (w *walker) apportion(v, left, anc *wnode) *wnode {
	if left == nil {
		return anc
	}

	vip, vop := v, v                      // inside and outside right contour
	vim, vom := left, v.parent.children[0] // inside and outside left contour
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + w.separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, anc), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		anc = v
	}
	return anc
}

func nextLeft(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func nextAncestor(vim, v, anc *wnode) *wnode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return anc
}

// moveSubtree shifts wp right and spreads the change over the siblings
// between wm and wp, applied later by executeShifts.
func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		c := v.children[i]
		c.prelim += shift
		c.mod += shift
		change += c.change
		shift += c.shift + change
	}
}

// scale maps unit positions to pixels and fills in parent references.
func (w *walker) scale(breadthExtent, depthExtent, minSep float64) Bounds {
	left, right := w.root, w.root
	for _, v := range w.order {
		if v.out.BreadthCoord < left.out.BreadthCoord {
			left = v
		}
		if v.out.BreadthCoord > right.out.BreadthCoord {
			right = v
		}
	}

	s := 1.0
	if left != right {
		s = w.separation(left, right) / 2
	}
	tx := s - left.out.BreadthCoord
	kx := max(breadthExtent/(right.out.BreadthCoord+s+tx), minSep)
	ky := depthExtent
	if w.maxGen > 0 {
		ky = depthExtent / float64(w.maxGen)
	}

	var b Bounds
	for i, v := range w.order {
		p := v.out
		p.BreadthCoord = (p.BreadthCoord + tx) * kx
		p.DepthCoord = float64(p.Generation) * ky
		if i == 0 {
			b = Bounds{MinBreadth: p.BreadthCoord, MaxBreadth: p.BreadthCoord}
		}
		b.MinBreadth = min(b.MinBreadth, p.BreadthCoord)
		b.MaxBreadth = max(b.MaxBreadth, p.BreadthCoord)
		b.MaxDepth = max(b.MaxDepth, p.DepthCoord)
	}

	// Parents precede children in pre-order, so their coordinates are final.
	for _, v := range w.order {
		if v.parent != w.virtual {
			pt := v.parent.out.Point()
			v.out.Parent = &pt
		}
	}
	return b
}

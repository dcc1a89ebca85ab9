package layout

import (
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// Canvas is the viewport the layout is fitted to, in pixels.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Margins reserve space around the drawing, in pixels.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins leave room for the root label on the left and leaf labels
// on the right.
func DefaultMargins() Margins {
	return Margins{Top: 20, Right: 120, Bottom: 20, Left: 120}
}

// Point is a position in layout space.
type Point struct {
	Depth   float64 `json:"depth"`
	Breadth float64 `json:"breadth"`
}

// PositionedNode pairs a tree node with its computed coordinates.
type PositionedNode struct {
	Node         *tree.Node
	Path         tree.Path
	Generation   int
	DepthCoord   float64
	BreadthCoord float64
	Parent       *Point // nil for the root
	Children     []*PositionedNode
}

// Point returns the node's coordinates.
func (p *PositionedNode) Point() Point {
	return Point{Depth: p.DepthCoord, Breadth: p.BreadthCoord}
}

// IsLeaf reports whether the node has no positioned children.
func (p *PositionedNode) IsLeaf() bool { return len(p.Children) == 0 }

// Bounds are the content extents of a layout in layout space.
type Bounds struct {
	MinBreadth float64 `json:"min_breadth"`
	MaxBreadth float64 `json:"max_breadth"`
	MaxDepth   float64 `json:"max_depth"`
}

// Layout is the result of [Compute].
type Layout struct {
	Root          *PositionedNode
	Canvas        Canvas
	Margins       Margins
	Bounds        Bounds
	NodeCount     int
	MaxGeneration int
}

// Walk visits positioned nodes in pre-order. Returning false from fn skips
// the node's children.
func (l *Layout) Walk(fn func(*PositionedNode) bool) {
	if l == nil || l.Root == nil {
		return
	}
	walk(l.Root, fn)
}

func walk(n *PositionedNode, fn func(*PositionedNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Nodes returns all positioned nodes in pre-order.
func (l *Layout) Nodes() []*PositionedNode {
	out := make([]*PositionedNode, 0, l.NodeCount)
	l.Walk(func(n *PositionedNode) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Screen maps a layout point to canvas pixels.
func (l *Layout) Screen(p Point) (x, y float64) {
	return l.Margins.Left + p.Depth, l.Margins.Top + p.Breadth
}

// ContentSize returns the pixel size needed to show the whole layout. It is
// never smaller than the canvas, and larger when the tree outgrew it.
func (l *Layout) ContentSize() (w, h float64) {
	w = max(l.Canvas.Width, l.Margins.Left+l.Bounds.MaxDepth+l.Margins.Right)
	h = max(l.Canvas.Height, l.Margins.Top+l.Bounds.MaxBreadth+l.Margins.Bottom)
	return w, h
}

package scene

import (
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
)

// LinkIconDataURI is the default link affordance image.
const LinkIconDataURI = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHdpZHRoPSIxNiIgaGVpZ2h0PSIxNiIgdmlld0JveD0iMCAwIDE2IDE2Ij4KICA8cGF0aCBkPSJNMTIgNGwtMi0yTDYuOTUgMTMuOTZMMjAuMyA2Ljc1bDEuMjUgMS4yNWwxLjI1LTEuMjVMMi4yMCA4LjUsNCAxNiIgc3Ryb2tlLXdpZHRoPSIxIiBzdHJva2UtY29sb3I9IiMzMzMiLz48L3N2Zz4="

// Theme holds the sizes and colors of scene elements.
type Theme struct {
	NodeRadius float64
	Node       Paint

	LabelOffset float64 // distance from node center to label anchor
	LabelDY     float64 // baseline shift in ems
	LabelFont   Font
	LabelColor  string

	// Backing rectangle padding around the measured label bounds.
	BackingPadX float64
	BackingPadY float64
	Backing     Paint

	IconSize   float64
	IconOffset Point // top-left corner relative to the node center
	IconHref   string

	Connector Paint
}

// DefaultTheme returns the dark label, blue node look.
func DefaultTheme() Theme {
	return Theme{
		NodeRadius: 15,
		Node:       Paint{Fill: "#007bff", Stroke: "#fff", StrokeWidth: 2},

		LabelOffset: 20,
		LabelDY:     0.35,
		LabelFont:   Font{Family: "sans-serif", Size: 20},
		LabelColor:  "#fff",

		BackingPadX: 5,
		BackingPadY: 10,
		Backing:     Paint{Fill: "#343a40", Stroke: "#495057", StrokeWidth: 1},

		IconSize:   20,
		IconOffset: Point{X: -15, Y: -40},
		IconHref:   LinkIconDataURI,

		Connector: Paint{Stroke: "#ccc", StrokeWidth: 2},
	}
}

// Footprint returns how far a node's drawing reaches above and below its
// center along the breadth axis, taking the label height to be the font
// size.
func (t Theme) Footprint() (above, below float64) {
	half := t.LabelFont.Size/2 + t.BackingPadY
	above = max(t.NodeRadius, half, -t.IconOffset.Y)
	below = max(t.NodeRadius, half, t.IconOffset.Y+t.IconSize)
	return above, below
}

// MinSeparation is the smallest breadth distance at which two nodes of one
// generation, either of them carrying a link icon, do not overlap.
func (t Theme) MinSeparation() float64 {
	above, below := t.Footprint()
	return above + below
}

// LabelAnchor decides which side of the circle a node's label sits on.
// Nodes with children label toward the parent, leaves toward the open side.
func LabelAnchor(n *layout.PositionedNode) Anchor {
	if n.IsLeaf() {
		return AnchorStart
	}
	return AnchorEnd
}

// Measurer sizes a label before it is drawn.
type Measurer interface {
	Measure(text string, font Font) (w, h float64)
}

// RuneMeasurer estimates label width from terminal cell widths, so wide
// scripts and emoji count double. Advance is the average glyph advance as a
// fraction of the font size; zero means 0.6.
type RuneMeasurer struct {
	Advance float64
}

// Measure implements [Measurer].
func (m RuneMeasurer) Measure(text string, font Font) (w, h float64) {
	adv := m.Advance
	if adv <= 0 {
		adv = 0.6
	}
	return float64(runewidth.StringWidth(text)) * font.Size * adv, font.Size
}

// Option configures [Build] and [Render].
type Option func(*builder)

// WithTheme replaces [DefaultTheme].
func WithTheme(t Theme) Option {
	return func(b *builder) { b.theme = t }
}

// WithMeasurer replaces the default [RuneMeasurer].
func WithMeasurer(m Measurer) Option {
	return func(b *builder) {
		if m != nil {
			b.measure = m
		}
	}
}

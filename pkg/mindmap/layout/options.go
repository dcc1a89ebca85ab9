package layout

import (
	"slices"
)

// Defaults applied by [Compute].
const (
	// DefaultMinSeparation is the smallest breadth distance, in pixels, that
	// one unit of separation may shrink to. It covers the default node
	// drawing: link icon top to label backing bottom.
	DefaultMinSeparation = 60.0

	// DefaultDepthFraction is the share of the canvas width used by the
	// depth axis.
	DefaultDepthFraction = 2.0 / 3.0
)

// SeparationFunc returns the breadth distance, in units, wanted between two
// adjacent nodes of the same generation. Results that are not positive are
// treated as 1.
type SeparationFunc func(a, b *PositionedNode) float64

// DefaultSeparation keeps siblings one unit apart and cousins two.
func DefaultSeparation(a, b *PositionedNode) float64 {
	if Siblings(a, b) {
		return 1
	}
	return 2
}

// Siblings reports whether a and b share a parent.
func Siblings(a, b *PositionedNode) bool {
	if len(a.Path) == 0 || len(a.Path) != len(b.Path) {
		return false
	}
	return slices.Equal(a.Path[:len(a.Path)-1], b.Path[:len(b.Path)-1])
}

type config struct {
	separation    SeparationFunc
	minSeparation float64
	depthFraction float64
	contour       bool
}

func defaultConfig() config {
	return config{
		separation:    DefaultSeparation,
		minSeparation: DefaultMinSeparation,
		depthFraction: DefaultDepthFraction,
	}
}

// Option configures [Compute].
type Option func(*config)

// WithSeparation replaces [DefaultSeparation].
func WithSeparation(fn SeparationFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.separation = fn
		}
	}
}

// WithMinSeparation sets the pixel floor for one unit of separation.
// Zero disables the floor, letting large trees compress into the canvas.
func WithMinSeparation(px float64) Option {
	return func(c *config) { c.minSeparation = px }
}

// WithDepthFraction sets the share of the canvas width used by the depth axis.
func WithDepthFraction(f float64) Option {
	return func(c *config) { c.depthFraction = f }
}

// WithContourPacking packs subtrees against each other level by level, as
// the classic tidy tree does, producing a more compact drawing. Nodes of one
// generation still never overlap, but a subtree's band may reach into its
// sibling's band at generations the two do not share.
func WithContourPacking() Option {
	return func(c *config) { c.contour = true }
}

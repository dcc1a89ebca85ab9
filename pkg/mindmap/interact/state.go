package interact

import (
	"fmt"
	"time"

	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// Transform is the pan/zoom applied to the whole scene:
// surface = scene*K + (X, Y).
type Transform struct {
	X, Y float64
	K    float64
}

// Identity is the transform of a freshly attached scene.
var Identity = Transform{K: 1}

// Apply maps a scene point to surface coordinates.
func (t Transform) Apply(p scene.Point) (x, y float64) {
	return p.X*t.K + t.X, p.Y*t.K + t.Y
}

// Invert maps surface coordinates to scene space.
func (t Transform) Invert(x, y float64) scene.Point {
	return scene.Point{X: (x - t.X) / t.K, Y: (y - t.Y) / t.K}
}

// String formats t as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Phase is the lifecycle stage of the tooltip.
//
//	Hidden -> FadingIn -> Visible -> FadingOut -> Hidden
//
// Entering a node while FadingOut jumps straight to Visible.
type Phase int

const (
	Hidden Phase = iota
	FadingIn
	Visible
	FadingOut
)

func (p Phase) String() string {
	switch p {
	case Hidden:
		return "hidden"
	case FadingIn:
		return "fading-in"
	case Visible:
		return "visible"
	case FadingOut:
		return "fading-out"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Tooltip is the single floating summary panel.
type Tooltip struct {
	Phase   Phase
	Content string
	Path    tree.Path // node the content belongs to
	X, Y    float64   // surface coordinates of the panel corner
	Opacity float64

	since time.Time // start of the current fade
	from  float64   // opacity at the start of the current fade
}

// SceneState is everything the interaction layer knows about the live scene.
type SceneState struct {
	Transform Transform
	Tooltip   Tooltip

	// Hover is the path of the region under the pointer; Hovering is false
	// when the pointer is over empty space or outside the surface.
	Hover    tree.Path
	Hovering bool

	drag          drag
	suppressClick bool
}

type drag struct {
	active         bool
	startX, startY float64
	lastX, lastY   float64
	moved          bool
}

// Dragging reports whether a pointer drag is in progress.
func (s *SceneState) Dragging() bool { return s.drag.active }

package scene

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// Kind identifies a draw command.
type Kind int

const (
	KindGroup Kind = iota
	KindCircle
	KindRect
	KindText
	KindIcon
	KindPath
	KindTitle
)

var kindNames = [...]string{"group", "circle", "rect", "text", "icon", "path", "title"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is a single drawing instruction.
type Command interface {
	Kind() Kind
}

// Point is a position in scene space.
type Point struct {
	X, Y float64
}

// Box is an axis-aligned rectangle in scene space.
type Box struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	x0, y0 := min(b.X, o.X), min(b.Y, o.Y)
	x1, y1 := max(b.X+b.W, o.X+o.W), max(b.Y+b.H, o.Y+o.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Paint is the fill and stroke of a shape. An empty color means none.
type Paint struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Group translates its items to a node position.
type Group struct {
	Path  tree.Path
	X, Y  float64
	Items []Command
}

// Circle is centered on (CX, CY), relative to its group.
type Circle struct {
	CX, CY, R float64
	Paint
}

// Rect is a filled rectangle, used as the label backing.
type Rect struct {
	Box
	Paint
}

// Anchor is the horizontal alignment of a label.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

// Font describes label typography.
type Font struct {
	Family string
	Size   float64
}

// Text is a single-line label. DY shifts the baseline, in ems.
type Text struct {
	X, Y    float64
	DY      float64
	Content string
	Anchor  Anchor
	Font    Font
	Fill    string
}

// Icon is the link affordance image.
type Icon struct {
	Box
	Href string // image source
	Link string // URL opened on click
}

// Path is a cubic Bézier connector from From to To.
type Path struct {
	From, C1, C2, To Point
	Paint
}

// D returns the SVG path data of the connector.
func (p Path) D() string {
	return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
		num(p.From.X), num(p.From.Y),
		num(p.C1.X), num(p.C1.Y),
		num(p.C2.X), num(p.C2.Y),
		num(p.To.X), num(p.To.Y))
}

// Title is the native tooltip text of its group.
type Title struct {
	Content string
}

func (Group) Kind() Kind  { return KindGroup }
func (Circle) Kind() Kind { return KindCircle }
func (Rect) Kind() Kind   { return KindRect }
func (Text) Kind() Kind   { return KindText }
func (Icon) Kind() Kind   { return KindIcon }
func (Path) Kind() Kind   { return KindPath }
func (Title) Kind() Kind  { return KindTitle }

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

package scene

import (
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
)

// Scene is the complete, ordered set of draw commands for one layout.
// Width and Height are the content size in scene space.
type Scene struct {
	Width, Height float64
	Commands      []Command
}

// Walk visits every command in paint order, descending into groups.
func (s *Scene) Walk(fn func(Command)) {
	if s == nil {
		return
	}
	walkCommands(s.Commands, fn)
}

func walkCommands(cmds []Command, fn func(Command)) {
	for _, c := range cmds {
		fn(c)
		if g, ok := c.(Group); ok {
			walkCommands(g.Items, fn)
		}
	}
}

// Stats counts the elements of a scene by role.
type Stats struct {
	Nodes      int // groups
	Circles    int
	Labels     int
	Backings   int
	Connectors int
	Icons      int
	Titles     int
}

// Elements returns the total number of drawn elements.
func (s Stats) Elements() int {
	return s.Nodes + s.Circles + s.Labels + s.Backings + s.Connectors + s.Icons + s.Titles
}

// Stats counts the commands of s.
func (s *Scene) Stats() Stats {
	var st Stats
	s.Walk(func(c Command) {
		switch c.Kind() {
		case KindGroup:
			st.Nodes++
		case KindCircle:
			st.Circles++
		case KindText:
			st.Labels++
		case KindRect:
			st.Backings++
		case KindPath:
			st.Connectors++
		case KindIcon:
			st.Icons++
		case KindTitle:
			st.Titles++
		}
	})
	return st
}

// Build produces the scene for l. It is a pure function of its inputs.
func Build(l *layout.Layout, opts ...Option) *Scene {
	s, _ := newBuilder(opts...).build(l)
	return s
}

type builder struct {
	theme   Theme
	measure Measurer
}

func newBuilder(opts ...Option) *builder {
	b := &builder{theme: DefaultTheme(), measure: RuneMeasurer{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *builder) build(l *layout.Layout) (*Scene, []Region) {
	w, h := l.ContentSize()
	s := &Scene{Width: w, Height: h}
	nodes := l.Nodes()

	// Connectors first so nodes paint over them.
	for _, n := range nodes {
		if n.Parent == nil {
			continue
		}
		s.Commands = append(s.Commands, b.connector(l, n))
	}

	regions := make([]Region, 0, len(nodes))
	for _, n := range nodes {
		g, r := b.node(l, n)
		s.Commands = append(s.Commands, g)
		regions = append(regions, r)
	}
	return s, regions
}

// connector curves from the child to its parent, leaving and arriving
// horizontally.
func (b *builder) connector(l *layout.Layout, n *layout.PositionedNode) Path {
	cx, cy := l.Screen(n.Point())
	px, py := l.Screen(*n.Parent)
	mid := (cx + px) / 2
	return Path{
		From:  Point{cx, cy},
		C1:    Point{mid, cy},
		C2:    Point{mid, py},
		To:    Point{px, py},
		Paint: b.theme.Connector,
	}
}

func (b *builder) node(l *layout.Layout, n *layout.PositionedNode) (Group, Region) {
	t := b.theme
	x, y := l.Screen(n.Point())

	anchor := LabelAnchor(n)
	tw, th := b.measure.Measure(n.Node.Name, t.LabelFont)
	labelX := t.LabelOffset
	textBox := Box{X: labelX, Y: -th / 2, W: tw, H: th}
	if anchor == AnchorEnd {
		labelX = -t.LabelOffset
		textBox.X = labelX - tw
	}
	backing := Box{
		X: textBox.X - t.BackingPadX,
		Y: textBox.Y - t.BackingPadY,
		W: textBox.W + 2*t.BackingPadX,
		H: textBox.H + 2*t.BackingPadY,
	}
	circle := Box{X: -t.NodeRadius, Y: -t.NodeRadius, W: 2 * t.NodeRadius, H: 2 * t.NodeRadius}

	items := []Command{
		Rect{Box: backing, Paint: t.Backing},
		Circle{R: t.NodeRadius, Paint: t.Node},
	}
	bounds := backing.Union(circle)

	var icon *Box
	if n.Node.HasLink() {
		ib := Box{X: t.IconOffset.X, Y: t.IconOffset.Y, W: t.IconSize, H: t.IconSize}
		items = append(items, Icon{Box: ib, Href: t.IconHref, Link: n.Node.Link})
		bounds = bounds.Union(ib)
		abs := ib.Translate(x, y)
		icon = &abs
	}

	items = append(items, Text{
		X:       labelX,
		DY:      t.LabelDY,
		Content: n.Node.Name,
		Anchor:  anchor,
		Font:    t.LabelFont,
		Fill:    t.LabelColor,
	})
	if n.Node.Summary != "" {
		items = append(items, Title{Content: n.Node.Summary})
	}

	g := Group{Path: n.Path, X: x, Y: y, Items: items}
	r := Region{
		Path:    n.Path,
		Name:    n.Node.Name,
		Summary: n.Node.Summary,
		Link:    n.Node.Link,
		Bounds:  bounds.Translate(x, y),
		Backing: backing.Translate(x, y),
		Icon:    icon,
		Center:  Point{x, y},
		Radius:  t.NodeRadius,
	}
	return g, r
}

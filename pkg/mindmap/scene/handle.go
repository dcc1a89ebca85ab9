package scene

import (
	"github.com/google/uuid"

	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// Region is the on-screen footprint of one node together with its data.
type Region struct {
	Path    tree.Path
	Name    string
	Summary string
	Link    string
	Bounds  Box  // scene space, covers circle, backing and icon
	Backing Box  // scene space
	Icon    *Box // scene space, nil without a link
	Center  Point
	Radius  float64
}

// HasLink reports whether clicking the region navigates somewhere.
func (r *Region) HasLink() bool { return r.Link != "" }

// Contains reports whether p hits one of the shapes drawn for the node.
// Bounds is only their envelope; the gaps around the circle do not count.
func (r *Region) Contains(p Point) bool {
	if dx, dy := p.X-r.Center.X, p.Y-r.Center.Y; dx*dx+dy*dy <= r.Radius*r.Radius {
		return true
	}
	return r.Backing.Contains(p) || r.OnIcon(p)
}

// OnIcon reports whether p hits the region's link icon.
func (r *Region) OnIcon(p Point) bool {
	return r.Icon != nil && r.Icon.Contains(p)
}

// Handle describes a rendered scene. It is valid until the next render on
// the same surface.
type Handle struct {
	ID      uuid.UUID
	Scene   *Scene
	Layout  *layout.Layout
	Regions []Region // paint order

	byPath map[string]int
}

func newHandle(s *Scene, l *layout.Layout, regions []Region) *Handle {
	h := &Handle{
		ID:      uuid.New(),
		Scene:   s,
		Layout:  l,
		Regions: regions,
		byPath:  make(map[string]int, len(regions)),
	}
	for i, r := range regions {
		h.byPath[r.Path.String()] = i
	}
	return h
}

// HitTest returns the topmost region whose circle, backing or icon contains
// the scene-space point.
func (h *Handle) HitTest(x, y float64) (*Region, bool) {
	p := Point{x, y}
	for i := len(h.Regions) - 1; i >= 0; i-- {
		if h.Regions[i].Contains(p) {
			return &h.Regions[i], true
		}
	}
	return nil, false
}

// Region returns the region of the node at p.
func (h *Handle) Region(p tree.Path) (*Region, bool) {
	i, ok := h.byPath[p.String()]
	if !ok {
		return nil, false
	}
	return &h.Regions[i], true
}

// Stats counts the drawn elements.
func (h *Handle) Stats() Stats {
	return h.Scene.Stats()
}

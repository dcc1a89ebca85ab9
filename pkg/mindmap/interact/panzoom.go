package interact

import (
	"math"

	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

func (c *Controller) registerPanZoom() {
	c.On(PointerDown, func(st *SceneState, ev Event, _ *scene.Region) {
		if ev.Button != 0 {
			return
		}
		st.drag = drag{active: true, startX: ev.X, startY: ev.Y, lastX: ev.X, lastY: ev.Y}
		st.suppressClick = false
	})
	c.On(PointerMove, func(st *SceneState, ev Event, _ *scene.Region) {
		d := &st.drag
		if !d.active {
			return
		}
		st.Transform.X += ev.X - d.lastX
		st.Transform.Y += ev.Y - d.lastY
		d.lastX, d.lastY = ev.X, ev.Y
		if math.Hypot(ev.X-d.startX, ev.Y-d.startY) > c.opts.DragThreshold {
			d.moved = true
		}
	})
	c.On(PointerUp, func(st *SceneState, _ Event, _ *scene.Region) {
		if st.drag.active && st.drag.moved {
			st.suppressClick = true
		}
		st.drag = drag{}
	})
	c.On(PointerLeave, func(st *SceneState, _ Event, _ *scene.Region) {
		st.drag = drag{}
	})
	c.On(Wheel, func(st *SceneState, ev Event, _ *scene.Region) {
		if ev.DeltaY == 0 || math.IsNaN(ev.DeltaY) {
			return
		}
		c.zoomAt(st, ev.X, ev.Y, st.Transform.K*math.Pow(2, -ev.DeltaY*c.opts.WheelFactor))
	})
	c.On(Pinch, func(st *SceneState, ev Event, _ *scene.Region) {
		if !(ev.Scale > 0) || math.IsInf(ev.Scale, 0) {
			return
		}
		c.zoomAt(st, ev.X, ev.Y, st.Transform.K*ev.Scale)
	})
}

// zoomAt rescales to k, clamped to the scale extent, keeping the scene point
// under (x, y) in place.
func (c *Controller) zoomAt(st *SceneState, x, y, k float64) {
	k = min(max(k, c.opts.MinScale), c.opts.MaxScale)
	if k == st.Transform.K {
		return
	}
	p := st.Transform.Invert(x, y)
	st.Transform = Transform{X: x - p.X*k, Y: y - p.Y*k, K: k}
}

// ZoomBy scales around the surface point (x, y), as a wheel or keyboard
// zoom would.
func (c *Controller) ZoomBy(x, y, factor float64) {
	if c.detached || !(factor > 0) {
		return
	}
	c.zoomAt(&c.state, x, y, c.state.Transform.K*factor)
}

// PanBy translates the scene by (dx, dy) surface pixels.
func (c *Controller) PanBy(dx, dy float64) {
	if c.detached {
		return
	}
	c.state.Transform.X += dx
	c.state.Transform.Y += dy
}

package interact

import (
	"slices"
	"time"

	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

func (c *Controller) registerTooltip() {
	c.On(PointerEnter, c.hover)
	c.On(PointerMove, c.hover)
	c.On(PointerLeave, func(st *SceneState, ev Event, _ *scene.Region) {
		now := c.opts.Clock()
		c.advance(&st.Tooltip, now)
		if st.Hovering {
			st.Hover, st.Hovering = nil, false
			c.fadeOut(&st.Tooltip, now)
		}
	})
	c.On(Tick, func(st *SceneState, _ Event, _ *scene.Region) {
		c.advance(&st.Tooltip, c.opts.Clock())
	})
}

// hover tracks which region is under the pointer and starts fades when it
// changes.
func (c *Controller) hover(st *SceneState, ev Event, hit *scene.Region) {
	now := c.opts.Clock()
	c.advance(&st.Tooltip, now)

	switch {
	case hit == nil && st.Hovering:
		st.Hover, st.Hovering = nil, false
		c.fadeOut(&st.Tooltip, now)
	case hit != nil && (!st.Hovering || !slices.Equal(st.Hover, hit.Path)):
		st.Hover, st.Hovering = slices.Clone(hit.Path), true
		c.fadeIn(&st.Tooltip, hit, ev, now)
	}
}

func (c *Controller) fadeIn(t *Tooltip, r *scene.Region, ev Event, now time.Time) {
	t.Content = r.Summary
	t.Path = slices.Clone(r.Path)
	t.X = ev.X + c.opts.TooltipOffset.X
	t.Y = ev.Y + c.opts.TooltipOffset.Y

	switch t.Phase {
	case Hidden:
		t.Phase, t.since, t.from = FadingIn, now, t.Opacity
		c.advance(t, now)
	case FadingOut:
		t.Phase, t.Opacity = Visible, c.opts.TooltipOpacity
	}
}

func (c *Controller) fadeOut(t *Tooltip, now time.Time) {
	if t.Phase == FadingIn || t.Phase == Visible {
		t.Phase, t.since, t.from = FadingOut, now, t.Opacity
		c.advance(t, now)
	}
}

// advance moves a fading tooltip forward to now.
func (c *Controller) advance(t *Tooltip, now time.Time) {
	switch t.Phase {
	case FadingIn:
		f := progress(t.since, now, c.opts.FadeIn)
		t.Opacity = t.from + (c.opts.TooltipOpacity-t.from)*f
		if f >= 1 {
			t.Phase, t.Opacity = Visible, c.opts.TooltipOpacity
		}
	case FadingOut:
		f := progress(t.since, now, c.opts.FadeOut)
		t.Opacity = t.from * (1 - f)
		if f >= 1 {
			t.Phase, t.Opacity, t.Path = Hidden, 0, nil
		}
	}
}

func progress(since, now time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	f := float64(now.Sub(since)) / float64(d)
	return min(max(f, 0), 1)
}

package interact

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

// EventKind identifies an input event.
type EventKind int

const (
	PointerMove EventKind = iota
	PointerEnter
	PointerLeave
	PointerDown
	PointerUp
	Click
	Wheel
	Pinch
	Tick
)

var eventNames = [...]string{"pointer-move", "pointer-enter", "pointer-leave", "pointer-down", "pointer-up", "click", "wheel", "pinch", "tick"}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one input from the host. X and Y are surface-local.
type Event struct {
	Kind   EventKind
	X, Y   float64
	DeltaY float64 // wheel delta, positive scrolls down (zooms out)
	Scale  float64 // pinch scale factor relative to the previous pinch event
	Button int     // 0 is the primary button
}

// positional reports whether the event carries a meaningful pointer position.
func (e Event) positional() bool {
	return e.Kind != Tick && e.Kind != PointerLeave
}

// Handler reacts to an event. hit is the region under the pointer, or nil.
type Handler func(st *SceneState, ev Event, hit *scene.Region)

// Options tune the built-in behaviors.
type Options struct {
	MinScale float64
	MaxScale float64

	FadeIn         time.Duration
	FadeOut        time.Duration
	TooltipOpacity float64
	TooltipOffset  scene.Point // from the pointer to the panel corner

	DragThreshold float64 // pixels a drag must travel to swallow the click
	WheelFactor   float64 // zoom = 2^(-DeltaY*WheelFactor)

	Clock  func() time.Time
	Logger *log.Logger
}

// DefaultOptions mirror the browser behavior of the mind map page.
func DefaultOptions() Options {
	return Options{
		MinScale:       0.5,
		MaxScale:       2,
		FadeIn:         200 * time.Millisecond,
		FadeOut:        500 * time.Millisecond,
		TooltipOpacity: 0.9,
		TooltipOffset:  scene.Point{X: 5, Y: -28},
		DragThreshold:  3,
		WheelFactor:    0.002,
		Clock:          time.Now,
	}
}

// Option adjusts [Options].
type Option func(*Options)

// WithClock sets the time source used for fades.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

// WithScaleExtent bounds the zoom level.
func WithScaleExtent(minScale, maxScale float64) Option {
	return func(o *Options) {
		if minScale > 0 && maxScale >= minScale {
			o.MinScale, o.MaxScale = minScale, maxScale
		}
	}
}

// WithFades sets the tooltip fade durations.
func WithFades(in, out time.Duration) Option {
	return func(o *Options) {
		if in >= 0 {
			o.FadeIn = in
		}
		if out >= 0 {
			o.FadeOut = out
		}
	}
}

// WithLogger sets the logger for navigation failures and handler panics.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

type registration struct {
	id int
	fn Handler
}

// Controller routes host events to handlers for one rendered scene.
type Controller struct {
	handle   *scene.Handle
	nav      Navigator
	opts     Options
	logger   *log.Logger
	state    SceneState
	handlers map[EventKind][]registration
	nextID   int
	detached bool
}

// Attach creates a controller for h with the built-in behaviors registered.
// A nil nav disables navigation.
func Attach(h *scene.Handle, nav Navigator, opts ...Option) *Controller {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Controller{
		handle:   h,
		nav:      nav,
		opts:     o,
		logger:   logger,
		state:    SceneState{Transform: Identity},
		handlers: make(map[EventKind][]registration),
	}
	c.registerPanZoom()
	c.registerTooltip()
	c.registerNavigation()
	return c
}

// On registers fn for events of kind. Handlers run in registration order.
// The returned function removes the registration; calling it twice is safe.
func (c *Controller) On(kind EventKind, fn Handler) (dispose func()) {
	c.nextID++
	id := c.nextID
	c.handlers[kind] = append(c.handlers[kind], registration{id: id, fn: fn})
	return func() {
		c.handlers[kind] = slices.DeleteFunc(c.handlers[kind], func(r registration) bool {
			return r.id == id
		})
	}
}

// Dispatch delivers ev to the handlers registered for its kind.
func (c *Controller) Dispatch(ev Event) {
	if c == nil || c.detached {
		return
	}
	regs := slices.Clone(c.handlers[ev.Kind])
	if len(regs) == 0 {
		return
	}

	var hit *scene.Region
	if ev.positional() && c.handle != nil {
		p := c.state.Transform.Invert(ev.X, ev.Y)
		if r, ok := c.handle.HitTest(p.X, p.Y); ok {
			hit = r
		}
	}

	for _, r := range regs {
		c.run(r.fn, ev, hit)
	}
}

func (c *Controller) run(fn Handler, ev Event, hit *scene.Region) {
	defer func() {
		if v := recover(); v != nil {
			c.logger.Error("interaction handler panicked", "event", ev.Kind, "panic", v)
		}
	}()
	fn(&c.state, ev, hit)
}

// Detach removes every handler. Later dispatches are ignored.
func (c *Controller) Detach() {
	if c == nil {
		return
	}
	c.handlers = make(map[EventKind][]registration)
	c.detached = true
}

// Detached reports whether Detach was called.
func (c *Controller) Detached() bool { return c.detached }

// State returns a copy of the current scene state.
func (c *Controller) State() SceneState {
	st := c.state
	st.Hover = slices.Clone(st.Hover)
	st.Tooltip.Path = slices.Clone(st.Tooltip.Path)
	return st
}

// Handle returns the scene the controller is attached to.
func (c *Controller) Handle() *scene.Handle { return c.handle }

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// Reset restores the identity transform and hides the tooltip.
func (c *Controller) Reset() {
	c.state = SceneState{Transform: Identity}
}

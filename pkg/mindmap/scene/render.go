package scene

import (
	"math"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
)

// Surface is a drawing target.
type Surface interface {
	// Size returns the drawable area of the viewport.
	Size() (w, h float64)
	// Clear removes everything previously drawn.
	Clear()
	// Draw paints a scene onto the cleared surface.
	Draw(s *Scene) error
}

// RenderError reports that a scene could not be drawn. The surface is left
// empty.
type RenderError struct {
	Reason string
	Err    error // surface failure, if any
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Err != nil {
		return "render: " + e.Reason + ": " + e.Err.Error()
	}
	return "render: " + e.Reason
}

// Unwrap exposes the INVALID_SURFACE code and the surface failure.
func (e *RenderError) Unwrap() []error {
	errs := []error{apperr.New(apperr.ErrCodeInvalidSurface, "%s", e.Reason)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Render draws l onto target and returns a handle to the result.
//
// A target without drawable area is rejected before it is touched.
// Otherwise the target is cleared and the new scene drawn; if the surface
// fails while drawing it is cleared again so no partial scene remains.
func Render(l *layout.Layout, target Surface, opts ...Option) (*Handle, error) {
	if l == nil || l.Root == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "render: nil layout")
	}
	if target == nil {
		return nil, &RenderError{Reason: "nil surface"}
	}
	w, h := target.Size()
	if !drawable(w) || !drawable(h) {
		return nil, &RenderError{Reason: "surface has no drawable area"}
	}

	s, regions := newBuilder(opts...).build(l)

	target.Clear()
	if err := target.Draw(s); err != nil {
		target.Clear()
		return nil, &RenderError{Reason: "surface draw failed", Err: err}
	}
	return newHandle(s, l, regions), nil
}

func drawable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Recorder is an in-memory [Surface] that keeps the last drawn scene.
type Recorder struct {
	Width, Height float64

	scene  *Scene
	clears int
	draws  int
}

// NewRecorder returns a recorder with the given viewport size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{Width: w, Height: h}
}

// Size implements [Surface].
func (r *Recorder) Size() (w, h float64) { return r.Width, r.Height }

// Clear implements [Surface].
func (r *Recorder) Clear() {
	r.scene = nil
	r.clears++
}

// Draw implements [Surface].
func (r *Recorder) Draw(s *Scene) error {
	r.scene = s
	r.draws++
	return nil
}

// Scene returns the currently drawn scene, or nil when the surface is empty.
func (r *Recorder) Scene() *Scene { return r.scene }

// Calls returns how often Clear and Draw were invoked.
func (r *Recorder) Calls() (clears, draws int) { return r.clears, r.draws }

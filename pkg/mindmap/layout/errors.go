package layout

import (
	"math"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
)

// Error reports a canvas or margin configuration that leaves nothing to draw on.
type Error struct {
	Canvas  Canvas
	Margins Margins
	Reason  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "layout: " + e.Reason
}

// Unwrap exposes the INVALID_CANVAS code to apperr.Is.
func (e *Error) Unwrap() error {
	return apperr.New(apperr.ErrCodeInvalidCanvas, "%s", e.Reason)
}

func validate(c Canvas, m Margins, cfg config) error {
	fail := func(reason string) error {
		return &Error{Canvas: c, Margins: m, Reason: reason}
	}

	if !finite(c.Width) || c.Width <= 0 {
		return fail("canvas width must be a positive number")
	}
	if !finite(c.Height) || c.Height <= 0 {
		return fail("canvas height must be a positive number")
	}
	for _, v := range []float64{m.Top, m.Right, m.Bottom, m.Left} {
		if !finite(v) || v < 0 {
			return fail("margins must be non-negative numbers")
		}
	}
	if c.Height-m.Top-m.Bottom <= 0 {
		return fail("vertical margins leave no drawable height")
	}
	if c.Width-m.Left-m.Right <= 0 {
		return fail("horizontal margins leave no drawable width")
	}
	if !finite(cfg.depthFraction) || cfg.depthFraction <= 0 {
		return fail("depth fraction must be a positive number")
	}
	if !finite(cfg.minSeparation) || cfg.minSeparation < 0 {
		return fail("minimum separation must be a non-negative number")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

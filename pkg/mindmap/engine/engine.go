// Package engine runs the mind map render cycle: build the tree, lay it out,
// draw it and attach interaction, one submission at a time.
//
// Every [Engine.Submit] tears the previous cycle down completely (listeners
// detached, surface cleared) before the new input is processed, so at most
// one scene is ever live. A failed submission leaves the surface empty.
//
// An Engine belongs to the host's event loop and is not safe for concurrent
// use.
package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// surfaceFormat names engine renders in pipeline hook events.
const surfaceFormat = "surface"

// Cycle is one live rendering of one input.
type Cycle struct {
	Tree       *tree.Node
	Layout     *layout.Layout
	Handle     *scene.Handle
	Controller *interact.Controller
}

// Options configure an [Engine].
type Options struct {
	Margins  layout.Margins
	Layout   []layout.Option
	Scene    []scene.Option
	Interact []interact.Option
	Logger   *log.Logger
}

// DefaultOptions uses the default margins and no extra options.
func DefaultOptions() Options {
	return Options{Margins: layout.DefaultMargins()}
}

// Engine owns a surface and the cycle currently drawn on it.
type Engine struct {
	surface scene.Surface
	nav     interact.Navigator
	opts    Options
	logger  *log.Logger
	current *Cycle
}

// New returns an engine drawing on surface. nav receives link clicks and
// may be nil.
func New(surface scene.Surface, nav interact.Navigator, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{surface: surface, nav: nav, opts: opts, logger: logger}
}

// Submit replaces the current cycle with one for value, a decoded JSON or
// YAML document. On error nothing is drawn and Current returns nil.
func (e *Engine) Submit(value any) (*Cycle, error) {
	e.Teardown()

	ctx := context.Background()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, "submit")
	start := time.Now()
	root, err := tree.Build(value)
	if err != nil {
		hooks.OnBuildComplete(ctx, "submit", 0, time.Since(start), err)
		e.logger.Debug("input rejected", "error", err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, "submit", root.Count(), time.Since(start), nil)
	return e.run(root)
}

// SubmitTree is Submit for an already built tree.
func (e *Engine) SubmitTree(root *tree.Node) (*Cycle, error) {
	e.Teardown()
	if root == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "nil tree")
	}
	return e.run(root)
}

func (e *Engine) run(root *tree.Node) (*Cycle, error) {
	ctx := context.Background()
	hooks := observability.Pipeline()
	start := time.Now()

	w, h := e.surface.Size()
	canvas := layout.Canvas{Width: w, Height: h}
	n := root.Count()
	hooks.OnLayoutStart(ctx, n)
	l, err := layout.Compute(root, canvas, e.opts.Margins, e.opts.Layout...)
	hooks.OnLayoutComplete(ctx, n, time.Since(start), err)
	if err != nil {
		e.logger.Debug("layout failed", "error", err)
		return nil, err
	}

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, []string{surfaceFormat})
	handle, err := scene.Render(l, e.surface, e.opts.Scene...)
	hooks.OnRenderComplete(ctx, []string{surfaceFormat}, time.Since(renderStart), err)
	if err != nil {
		e.logger.Debug("render failed", "error", err)
		return nil, err
	}

	iopts := append([]interact.Option{interact.WithLogger(e.logger)}, e.opts.Interact...)
	c := &Cycle{
		Tree:       root,
		Layout:     l,
		Handle:     handle,
		Controller: interact.Attach(handle, e.nav, iopts...),
	}
	e.current = c
	e.logger.Debug("render cycle ready", "id", handle.ID, "nodes", l.NodeCount, "duration", time.Since(start))
	return c, nil
}

// Teardown detaches the current cycle and clears the surface.
func (e *Engine) Teardown() {
	if e.current != nil {
		e.current.Controller.Detach()
		e.current = nil
	}
	e.surface.Clear()
}

// Current returns the live cycle, or nil.
func (e *Engine) Current() *Cycle { return e.current }

// Dispatch forwards ev to the live cycle's controller.
func (e *Engine) Dispatch(ev interact.Event) {
	if e.current != nil {
		e.current.Controller.Dispatch(ev)
	}
}

// Surface returns the engine's drawing target.
func (e *Engine) Surface() scene.Surface { return e.surface }

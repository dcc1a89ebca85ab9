// Package pipeline runs the batch form of the mind map render cycle.
//
// This package implements the parse → layout → render pipeline shared by
// the CLI commands and the HTTP server, so every entry point validates,
// caches and logs the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Decode JSON or YAML input and validate it into a tree
//  2. Layout: Compute node positions for a canvas
//  3. Render: Draw the scene onto SVG, HTML and PNG surfaces, or export
//     the layout as JSON
//
// Each stage can be run independently or as part of the complete pipeline.
// Rendering goes through the same [scene.Render] boundary as the
// interactive engine, so a surface without drawable area fails the same
// way in both.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, io.FormatJSON, pipeline.Options{
//	    Formats: []string{"svg", "html"},
//	})
//	svg := result.Artifacts["svg"]
//
// [scene.Render]: github.com/matzehuels/mindtree/pkg/mindmap/scene.Render
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/cache"
	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultPNGScale is the default pixel ratio of PNG output.
	DefaultPNGScale = 2.0

	// DefaultTitle is the default HTML page title.
	DefaultTitle = "Mind Map"

	// MaxCanvasSize bounds the viewport width and height in pixels.
	MaxCanvasSize = 16384.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatHTML: true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatHTML: "text/html; charset=utf-8",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. Zero values take
// defaults; the struct supports JSON for API requests.
type Options struct {
	// Layout options
	Width         float64         `json:"width,omitempty"`
	Height        float64         `json:"height,omitempty"`
	Margins       *layout.Margins `json:"margins,omitempty"` // nil uses layout.DefaultMargins
	MinSeparation float64         `json:"min_separation,omitempty"`
	DepthFraction float64         `json:"depth_fraction,omitempty"`
	Contour       bool            `json:"contour,omitempty"` // tidy-tree packing instead of disjoint bands

	// Render options
	Formats  []string      `json:"formats,omitempty"`
	MinScale float64       `json:"min_scale,omitempty"`
	MaxScale float64       `json:"max_scale,omitempty"`
	FadeIn   time.Duration `json:"fade_in,omitempty"`
	FadeOut  time.Duration `json:"fade_out,omitempty"`
	Scale    float64       `json:"scale,omitempty"` // PNG pixel ratio
	Title    string        `json:"title,omitempty"`

	// Runtime options (not serialized)
	Source  string      `json:"-"` // names the input in logs, e.g. a file path
	Refresh bool        `json:"-"` // skip cache reads
	Logger  *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the validated input.
	Tree *tree.Node

	// InputHash is the content hash of the canonical tree.
	InputHash string

	// Layout is the computed (or cached) layout.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Depth      int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, html, png, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margins == nil {
		m := layout.DefaultMargins()
		o.Margins = &m
	}
	if o.MinSeparation == 0 {
		o.MinSeparation = max(layout.DefaultMinSeparation, scene.DefaultTheme().MinSeparation())
	}
	if o.DepthFraction == 0 {
		o.DepthFraction = layout.DefaultDepthFraction
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	d := interact.DefaultOptions()
	if o.MinScale == 0 {
		o.MinScale = d.MinScale
	}
	if o.MaxScale == 0 {
		o.MaxScale = d.MaxScale
	}
	if o.FadeIn == 0 {
		o.FadeIn = d.FadeIn
	}
	if o.FadeOut == 0 {
		o.FadeOut = d.FadeOut
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width > MaxCanvasSize || o.Height > MaxCanvasSize {
		return apperr.New(apperr.ErrCodeInvalidCanvas, "canvas %gx%g exceeds %gx%g", o.Width, o.Height, MaxCanvasSize, MaxCanvasSize)
	}
	if o.MinScale <= 0 || o.MaxScale < o.MinScale {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid zoom extent [%g, %g]", o.MinScale, o.MaxScale)
	}
	if o.Scale <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid png scale %g", o.Scale)
	}
	if o.FadeIn < 0 || o.FadeOut < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "fade durations must not be negative")
	}
	return nil
}

// Canvas returns the layout viewport.
func (o *Options) Canvas() layout.Canvas {
	return layout.Canvas{Width: o.Width, Height: o.Height}
}

// LayoutOptions converts the layout settings.
func (o *Options) LayoutOptions() []layout.Option {
	opts := []layout.Option{
		layout.WithMinSeparation(o.MinSeparation),
		layout.WithDepthFraction(o.DepthFraction),
	}
	if o.Contour {
		opts = append(opts, layout.WithContourPacking())
	}
	return opts
}

// InteractOptions converts the interaction settings.
func (o *Options) InteractOptions() interact.Options {
	d := interact.DefaultOptions()
	d.MinScale, d.MaxScale = o.MinScale, o.MaxScale
	d.FadeIn, d.FadeOut = o.FadeIn, o.FadeOut
	d.Logger = o.Logger
	return d
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Width:         o.Width,
		Height:        o.Height,
		MinSeparation: o.MinSeparation,
		DepthFraction: o.DepthFraction,
		Contour:       o.Contour,
	}
	if o.Margins != nil {
		k.Margins = [4]float64{o.Margins.Top, o.Margins.Right, o.Margins.Bottom, o.Margins.Left}
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatHTML:
		k.MinScale, k.MaxScale, k.Title = o.MinScale, o.MaxScale, o.Title
		k.Fades = [2]int64{o.FadeIn.Milliseconds(), o.FadeOut.Milliseconds()}
	}
	return k
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/observability"
	"github.com/matzehuels/mindtree/pkg/render/nodelink"
	"github.com/matzehuels/mindtree/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "nil layout")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l *layout.Layout, format string, opts Options) ([]byte, error) {
	w, h := opts.Width, opts.Height
	switch format {
	case FormatSVG:
		s := sink.NewSVGSurface(w, h)
		if _, err := scene.Render(l, s); err != nil {
			return nil, err
		}
		return s.Bytes(), nil
	case FormatHTML:
		s := sink.NewHTMLSurface(w, h,
			sink.WithTitle(opts.Title),
			sink.WithInteraction(sink.InteractionFrom(opts.InteractOptions())))
		if _, err := scene.Render(l, s); err != nil {
			return nil, err
		}
		return s.Bytes(), nil
	case FormatPNG:
		cw, ch := l.ContentSize()
		if err := sink.CheckRaster(cw, ch, opts.Scale); err != nil {
			return nil, err
		}
		s := sink.NewPNGSurface(w, h, sink.WithScale(opts.Scale))
		if _, err := scene.Render(l, s); err != nil {
			return nil, err
		}
		return s.Bytes()
	case FormatJSON:
		return sink.RenderLayoutJSON(l)
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Pinned: true})), nil
	default:
		return nil, ValidateFormat(format)
	}
}

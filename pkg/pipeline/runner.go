package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/cache"
	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
	"github.com/matzehuels/mindtree/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so caching behaves the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, input []byte, format mtio.Format, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	source := opts.Source
	if source == "" {
		source = "input"
	}
	root, err := Parse(ctx, input, format, source)
	if err != nil {
		return nil, err
	}
	result.Tree = root
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = root.Count()
	result.Stats.Depth = root.Height()

	r.Logger.Info("parsed tree",
		"source", source,
		"nodes", result.Stats.NodeCount,
		"depth", result.Stats.Depth,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, hash, layoutHit, err := r.computeLayout(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.InputHash = hash
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", l.NodeCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and reports
// whether it came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, root *tree.Node, opts Options) (*layout.Layout, bool, error) {
	r.applyLogger(&opts)
	l, _, hit, err := r.computeLayout(ctx, root, opts)
	return l, hit, err
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, root *tree.Node, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, root, opts)
	return l, err
}

func (r *Runner) computeLayout(ctx context.Context, root *tree.Node, opts Options) (*layout.Layout, string, bool, error) {
	opts.SetLayoutDefaults()
	if root == nil {
		l, err := ComputeLayout(ctx, nil, opts)
		return l, "", false, err
	}

	hash, err := TreeHash(root)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash tree: %w", err)
	}
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		} else if hit {
			l, err := sink.ReadLayoutJSON(data)
			if err == nil {
				return l, hash, true, nil
			}
			// Unreadable entries are recomputed and overwritten.
			r.Logger.Debug("discarding cached layout", "key", key, "error", err)
		}
	}

	l, err := ComputeLayout(ctx, root, opts)
	if err != nil {
		return nil, hash, false, err
	}
	if data, err := sink.RenderLayoutJSON(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return l, hash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching. The hit result is
// true only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := sink.RenderLayoutJSON(l)
	if err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			missing = append(missing, format)
		}
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, l, sub)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

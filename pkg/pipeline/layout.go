package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// ComputeLayout lays root out for the canvas described by opts.
func ComputeLayout(ctx context.Context, root *tree.Node, opts Options) (*layout.Layout, error) {
	opts.SetLayoutDefaults()

	n := 0
	if root != nil {
		n = root.Count()
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, n)
	start := time.Now()
	l, err := layout.Compute(root, opts.Canvas(), *opts.Margins, opts.LayoutOptions()...)
	hooks.OnLayoutComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("layout computed",
		"nodes", l.NodeCount,
		"generations", l.MaxGeneration,
		"breadth", l.Bounds.MaxBreadth-l.Bounds.MinBreadth)
	return l, nil
}

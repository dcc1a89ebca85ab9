package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/render/sink"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [input]",
		Short: "Compute the mind map layout of a tree",
		Long: `Compute the mind map layout of a tree.

The layout command validates a JSON or YAML tree and computes the position
of every node for the canvas. The output is a layout.json file (same format
as 'render -f json') that can be drawn with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTreeFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "canvas height in pixels (default from config)")
	cmd.Flags().BoolVar(&flags.contour, "contour", false, "pack subtrees by contour instead of disjoint bands")

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, format, err := mtio.ReadFile(input)
	if err != nil {
		return err
	}
	root, err := pipeline.Parse(ctx, data, format, input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := newProgress(c.Logger)
	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	p.done(fmt.Sprintf("Laid out %d nodes", l.NodeCount))

	out, err := sink.RenderLayoutJSON(l)
	if err != nil {
		return err
	}
	path := outputPath(pipeline.FormatJSON, output, input, true)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(l.NodeCount, l.MaxGeneration, cacheHit)
	printHint("Render", appName+" visualize "+path)

	return nil
}

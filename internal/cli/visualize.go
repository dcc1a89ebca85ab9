package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/render/sink"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a mind map from a computed layout",
		Long: `Render a mind map from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
draws it as SVG, HTML, PNG or Graphviz DOT. The layout holds every position and
the canvas it was computed for, so this step is purely about drawing.

Use 'render' as a shortcut to go directly from a tree to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd, false)

	return cmd
}

// runVisualize loads a layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", input, err)
	}
	l, err := sink.ReadLayoutJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	// Draw on the canvas the layout was computed for.
	opts.Width, opts.Height = l.Canvas.Width, l.Canvas.Height

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifacts, opts.Formats, output, strings.TrimSuffix(input, ".layout.json")+".json")
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(l.NodeCount, l.MaxGeneration, cacheHit)
	return nil
}

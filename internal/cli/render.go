package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// watchDebounce coalesces the burst of events editors emit per save.
const watchDebounce = 150 * time.Millisecond

// renderCommand creates the render command (input → outputs in one step).
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
		refresh bool
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Render a mind map from a JSON or YAML tree",
		Long: `Render a mind map from a JSON or YAML tree.

The input is an object with a "name" and optional "summary", "link" and
"children" fields; children follow the same shape. Use "-" to read JSON
from standard input.

Outputs are written next to the input unless -o is given. With several
formats, -o is treated as a base path and each format adds its extension.

With --watch the input is rendered again whenever it changes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTreeFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			if watch {
				if args[0] == "-" {
					return errors.New("--watch needs a file input")
				}
				return c.watchRender(cmd.Context(), args[0], opts, output, noCache)
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the input changes")

	return cmd
}

// runRender executes the full pipeline once and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, format, err := mtio.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Source = input
	spinner := newSpinnerWithContext(ctx, "Rendering mind map...")
	spinner.Start()

	result, err := runner.Execute(ctx, data, format, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.Depth, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// watchRender renders input, then again after every change until ctx ends.
// Each change is a fresh run: failures are reported and the watch goes on.
func (c *CLI) watchRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch the directory and filter.
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	render := func() {
		if err := c.runRender(ctx, input, opts, output, noCache); err != nil && ctx.Err() == nil {
			printError("%v", err)
		}
	}
	render()
	printInfo("Watching %s for changes (ctrl+c to stop)", input)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.Logger.Debug("input changed", "path", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			pending = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			render()
		}
	}
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .html, ...), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "mindmap"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where the artifact of format goes. A single format
// with an explicit -o is written exactly there.
func outputPath(format, output, input string, single bool) string {
	if single && output != "" {
		return output
	}
	base := basePath(output, input)
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}

// writeArtifacts writes each artifact in format order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(format, output, input, len(formats) == 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

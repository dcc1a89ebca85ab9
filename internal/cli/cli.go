package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/internal/config"
	"github.com/matzehuels/mindtree/pkg/buildinfo"
	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mindtree"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mindtree renders hierarchical notes as interactive mind maps",
		Long:         `Mindtree is a CLI tool for turning a JSON or YAML tree of topics into a horizontal mind map, exported as SVG, PNG, a layout file or a self-contained interactive HTML page.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.RedisCacheConfig())
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return cache.WithHooks(rc, "redis"), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.WithHooks(fc, "file"), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mindtree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the pipeline settings shared by render, visualize and serve.
type renderFlags struct {
	formats  string
	width    float64
	height   float64
	minScale float64
	maxScale float64
	scale    float64
	title    string
	contour  bool
}

func (f *renderFlags) register(cmd *cobra.Command, withLayout bool) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), html, png, json, dot (comma-separated)")
	if withLayout {
		cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width in pixels (default from config)")
		cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height in pixels (default from config)")
		cmd.Flags().BoolVar(&f.contour, "contour", false, "pack subtrees by contour instead of disjoint bands")
	}
	cmd.Flags().Float64Var(&f.minScale, "min-scale", 0, "minimum zoom of the html page")
	cmd.Flags().Float64Var(&f.maxScale, "max-scale", 0, "maximum zoom of the html page")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "pixel ratio of png output")
	cmd.Flags().StringVar(&f.title, "title", "", "html page title")
}

// options builds pipeline options from the flags, filling unset values
// from the config.
func (c *CLI) options(f renderFlags) (pipeline.Options, error) {
	opts := pipeline.Options{
		Width:    f.width,
		Height:   f.height,
		Contour:  f.contour,
		Formats:  pipeline.ParseFormats(f.formats),
		MinScale: f.minScale,
		MaxScale: f.maxScale,
		Scale:    f.scale,
		Title:    f.title,
		Logger:   c.Logger,
	}
	c.Config.Apply(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

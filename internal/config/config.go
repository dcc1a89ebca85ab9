// Package config loads the mindtree configuration file.
//
// The file lives at $XDG_CONFIG_HOME/mindtree/config.toml. Missing files and
// missing keys fall back to [Default]; command-line flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds mindtree configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Zoom    ZoomConfig    `toml:"zoom"`
	Tooltip TooltipConfig `toml:"tooltip"`
	Cache   CacheConfig   `toml:"cache"`
	Serve   ServeConfig   `toml:"serve"`
}

// CanvasConfig sets the layout viewport.
type CanvasConfig struct {
	Width   float64    `toml:"width"`
	Height  float64    `toml:"height"`
	Margins [4]float64 `toml:"margins"` // top, right, bottom, left
	Contour bool       `toml:"contour"`
}

// ZoomConfig bounds the interactive zoom.
type ZoomConfig struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// TooltipConfig sets the tooltip fade durations in milliseconds.
type TooltipConfig struct {
	FadeInMs  int `toml:"fade_in_ms"`
	FadeOutMs int `toml:"fade_out_ms"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // "file", "redis", "none"
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig addresses the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	m := layout.DefaultMargins()
	d := interact.DefaultOptions()
	return &Config{
		Canvas: CanvasConfig{
			Width:   pipeline.DefaultWidth,
			Height:  pipeline.DefaultHeight,
			Margins: [4]float64{m.Top, m.Right, m.Bottom, m.Left},
		},
		Zoom: ZoomConfig{Min: d.MinScale, Max: d.MaxScale},
		Tooltip: TooltipConfig{
			FadeInMs:  int(d.FadeIn / time.Millisecond),
			FadeOutMs: int(d.FadeOut / time.Millisecond),
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "mindtree"},
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// Dir returns the mindtree config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindtree")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Tooltip.FadeInMs < 0 || c.Tooltip.FadeOutMs < 0 {
		return fmt.Errorf("tooltip: fade durations must not be negative")
	}
	return nil
}

// Apply fills the zero fields of opts from the config, so flags set by the
// user win.
func (c *Config) Apply(opts *pipeline.Options) {
	if opts.Width == 0 {
		opts.Width = c.Canvas.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Canvas.Height
	}
	if opts.Margins == nil {
		m := c.Canvas.Margins
		opts.Margins = &layout.Margins{Top: m[0], Right: m[1], Bottom: m[2], Left: m[3]}
	}
	if c.Canvas.Contour {
		opts.Contour = true
	}
	if opts.MinScale == 0 {
		opts.MinScale = c.Zoom.Min
	}
	if opts.MaxScale == 0 {
		opts.MaxScale = c.Zoom.Max
	}
	if opts.FadeIn == 0 {
		opts.FadeIn = time.Duration(c.Tooltip.FadeInMs) * time.Millisecond
	}
	if opts.FadeOut == 0 {
		opts.FadeOut = time.Duration(c.Tooltip.FadeOutMs) * time.Millisecond
	}
}

// RedisCacheConfig converts the redis section.
func (c *Config) RedisCacheConfig() cache.RedisConfig {
	r := c.Cache.Redis
	return cache.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix}
}

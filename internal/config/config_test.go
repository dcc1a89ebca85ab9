package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mindtree/pkg/pipeline"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Canvas.Width != 960 || cfg.Canvas.Height != 600 {
		t.Errorf("canvas = %vx%v, want 960x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Canvas.Margins != [4]float64{20, 120, 20, 120} {
		t.Errorf("margins = %v", cfg.Canvas.Margins)
	}
	if cfg.Zoom.Min != 0.5 || cfg.Zoom.Max != 2 {
		t.Errorf("zoom = %+v", cfg.Zoom)
	}
	if cfg.Tooltip.FadeInMs != 200 || cfg.Tooltip.FadeOutMs != 500 {
		t.Errorf("tooltip = %+v", cfg.Tooltip)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("expected cache backend 'file', got %q", cfg.Cache.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := Dir(); got != "/tmp/test-xdg/mindtree" {
		t.Errorf("Dir() = %q", got)
	}
	if got := Path(); got != "/tmp/test-xdg/mindtree/config.toml" {
		t.Errorf("Path() = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("expected defaults, got %+v", cfg.Serve)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[canvas]
width = 1200

[zoom]
max = 4

[cache]
backend = "redis"

[cache.redis]
addr = "cache:6379"
db = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 1200 || cfg.Canvas.Height != 600 {
		t.Errorf("canvas = %+v, want width overridden and height kept", cfg.Canvas)
	}
	if cfg.Zoom.Min != 0.5 || cfg.Zoom.Max != 4 {
		t.Errorf("zoom = %+v", cfg.Zoom)
	}
	rc := cfg.RedisCacheConfig()
	if rc.Addr != "cache:6379" || rc.DB != 2 || rc.Prefix != "mindtree" {
		t.Errorf("redis = %+v", rc)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[canvas\nwidth = 1", "parse"},
		{"backend", "[cache]\nbackend = \"memcached\"", "unknown backend"},
		{"fade", "[tooltip]\nfade_in_ms = -1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Canvas.Contour = true
	cfg.Serve.Addr = "127.0.0.1:9000"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Zoom.Max = 3

	opts := pipeline.Options{Width: 500}
	cfg.Apply(&opts)

	if opts.Width != 500 {
		t.Errorf("Width = %v, flag value should win", opts.Width)
	}
	if opts.Height != 600 || opts.MaxScale != 3 {
		t.Errorf("Height = %v MaxScale = %v", opts.Height, opts.MaxScale)
	}
	if opts.Margins == nil || opts.Margins.Left != 120 {
		t.Errorf("Margins = %+v", opts.Margins)
	}
	if opts.FadeIn != 200*time.Millisecond || opts.FadeOut != 500*time.Millisecond {
		t.Errorf("fades = %v/%v", opts.FadeIn, opts.FadeOut)
	}
}

package pipeline

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindtree/pkg/cache"
	apperr "github.com/matzehuels/mindtree/pkg/errors"
	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

const sampleJSON = `{
  "name": "Root",
  "children": [
    {"name": "A", "summary": "first"},
    {"name": "B", "link": "https://example.com/b", "summary": "second"}
  ]
}`

const sampleYAML = `
name: Root
children:
  - name: A
    summary: first
  - name: B
    link: https://example.com/b
    summary: second
`

// memCache counts traffic so tests can tell hits from recomputation.
type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"html", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, apperr.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"svg", []string{"svg"}},
		{"svg,html", []string{"svg", "html"}},
		{" SVG , png,svg ", []string{"svg", "png"}},
		{",,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	var o Options
	o.SetLayoutDefaults()

	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("canvas = %vx%v, want %vx%v", o.Width, o.Height, DefaultWidth, DefaultHeight)
	}
	if o.Margins == nil || o.Margins.Left != 120 {
		t.Errorf("Margins = %+v, want defaults", o.Margins)
	}
	if o.MinSeparation == 0 || o.DepthFraction == 0 {
		t.Error("separation defaults not applied")
	}
	if o.Logger == nil {
		t.Error("Logger should be set")
	}

	o = Options{Width: 500}
	o.SetLayoutDefaults()
	if o.Width != 500 {
		t.Errorf("Width = %v, explicit value should be kept", o.Width)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var o Options
	o.SetRenderDefaults()

	if !slices.Equal(o.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.MinScale != 0.5 || o.MaxScale != 2 {
		t.Errorf("zoom extent = [%v, %v], want [0.5, 2]", o.MinScale, o.MaxScale)
	}
	if o.FadeIn != 200*time.Millisecond || o.FadeOut != 500*time.Millisecond {
		t.Errorf("fades = %v/%v", o.FadeIn, o.FadeOut)
	}
	if o.Scale != DefaultPNGScale || o.Title != DefaultTitle {
		t.Errorf("Scale = %v Title = %q", o.Scale, o.Title)
	}
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperr.Code
	}{
		{"defaults", Options{}, ""},
		{"bad format", Options{Formats: []string{"gif"}}, apperr.ErrCodeInvalidFormat},
		{"inverted zoom", Options{MinScale: 3, MaxScale: 2}, apperr.ErrCodeInvalidInput},
		{"negative zoom", Options{MinScale: -1}, apperr.ErrCodeInvalidInput},
		{"negative scale", Options{Scale: -2}, apperr.ErrCodeInvalidInput},
		{"negative fade", Options{FadeIn: -time.Second}, apperr.ErrCodeInvalidInput},
		{"huge width", Options{Width: 1e9}, apperr.ErrCodeInvalidCanvas},
		{"huge height", Options{Height: MaxCanvasSize + 1}, apperr.ErrCodeInvalidCanvas},
		{"largest canvas", Options{Width: MaxCanvasSize, Height: MaxCanvasSize}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{}
	if err := o.ValidateForRender(); err != nil {
		t.Fatal(err)
	}

	svg := o.ArtifactKeyOpts(FormatSVG)
	if svg.Scale != 0 || svg.Title != "" {
		t.Errorf("svg key should ignore png and html settings: %+v", svg)
	}
	png := o.ArtifactKeyOpts(FormatPNG)
	if png.Scale != DefaultPNGScale {
		t.Errorf("png key Scale = %v", png.Scale)
	}
	html := o.ArtifactKeyOpts(FormatHTML)
	if html.Title != DefaultTitle || html.Fades != [2]int64{200, 500} {
		t.Errorf("html key = %+v", html)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format mtio.Format
		code   apperr.Code
		nodes  int
	}{
		{"json", sampleJSON, mtio.FormatJSON, "", 3},
		{"yaml", sampleYAML, mtio.FormatYAML, "", 3},
		{"malformed", `{"name":`, mtio.FormatJSON, apperr.ErrCodeInvalidJSON, 0},
		{"missing name", `{"children":[]}`, mtio.FormatJSON, apperr.ErrCodeInvalidShape, 0},
		{"bad child", `{"name":"r","children":[1]}`, mtio.FormatJSON, apperr.ErrCodeInvalidShape, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(context.Background(), []byte(tt.input), tt.format, "test")
			if tt.code != "" {
				if !apperr.Is(err, tt.code) {
					t.Fatalf("error = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if root.Count() != tt.nodes {
				t.Errorf("Count() = %d, want %d", root.Count(), tt.nodes)
			}
		})
	}
}

func TestTreeHashIgnoresEncoding(t *testing.T) {
	ctx := context.Background()
	a, err := Parse(ctx, []byte(sampleJSON), mtio.FormatJSON, "json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(ctx, []byte(sampleYAML), mtio.FormatYAML, "yaml")
	if err != nil {
		t.Fatal(err)
	}
	ha, _ := TreeHash(a)
	hb, _ := TreeHash(b)
	if ha == "" || ha != hb {
		t.Errorf("hashes differ: %q vs %q", ha, hb)
	}

	b.Children[0].Name = "changed"
	hc, _ := TreeHash(b)
	if hc == ha {
		t.Error("hash should change with content")
	}
}

func TestComputeLayoutRejectsCanvas(t *testing.T) {
	root := &tree.Node{Name: "r"}
	_, err := ComputeLayout(context.Background(), root, Options{Height: 30})
	if !apperr.Is(err, apperr.ErrCodeInvalidCanvas) {
		t.Fatalf("error = %v, want INVALID_CANVAS", err)
	}
}

func TestRenderAllFormats(t *testing.T) {
	ctx := context.Background()
	root, err := Parse(ctx, []byte(sampleJSON), mtio.FormatJSON, "test")
	if err != nil {
		t.Fatal(err)
	}
	l, err := ComputeLayout(ctx, root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Formats: []string{FormatSVG, FormatHTML, FormatPNG, FormatJSON, FormatDOT}, Title: "Demo"}
	artifacts, err := Render(ctx, l, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	checks := map[string]string{
		FormatSVG:  "<svg",
		FormatHTML: "<title>Demo</title>",
		FormatPNG:  "\x89PNG",
		FormatJSON: `"node_count": 3`,
		FormatDOT:  `"n1" [label="B"`,
	}
	for format, want := range checks {
		data := artifacts[format]
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("%s artifact missing %q", format, want)
		}
	}
}

func TestRenderRejectsHugeRaster(t *testing.T) {
	l, err := ComputeLayout(context.Background(), &tree.Node{Name: "r"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Render(context.Background(), l, Options{Formats: []string{FormatPNG}, Scale: 100})
	if !apperr.Is(err, apperr.ErrCodeInvalidCanvas) {
		t.Fatalf("error = %v, want INVALID_CANVAS", err)
	}
	if _, err := Render(context.Background(), l, Options{Formats: []string{FormatSVG}, Scale: 100}); err != nil {
		t.Errorf("svg is not rasterised: %v", err)
	}
}

func TestRunnerCachesEmptyNames(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quietLogger())
	input := []byte(`{"name":"root","children":[{"name":""}]}`)
	opts := Options{Formats: []string{FormatSVG}}

	if _, err := r.Execute(ctx, input, mtio.FormatJSON, opts); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, input, mtio.FormatJSON, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.LayoutHit {
		t.Error("cached layout with an empty name was recomputed")
	}
}

func TestRenderRejectsInvalidFormat(t *testing.T) {
	l, err := ComputeLayout(context.Background(), &tree.Node{Name: "r"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Render(context.Background(), l, Options{Formats: []string{"pdf"}})
	if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Fatalf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())

	opts := Options{Formats: []string{FormatSVG, FormatJSON}}
	first, err := r.Execute(ctx, []byte(sampleJSON), mtio.FormatJSON, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 3 || first.Stats.Depth != 1 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if first.InputHash == "" {
		t.Error("InputHash should be set")
	}
	if c.sets != 3 {
		t.Errorf("sets = %d, want 3 (layout + 2 artifacts)", c.sets)
	}

	// Same tree written as YAML hits every stage.
	second, err := r.Execute(ctx, []byte(sampleYAML), mtio.FormatYAML, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}
	if second.Layout.NodeCount != 3 {
		t.Errorf("cached layout NodeCount = %d", second.Layout.NodeCount)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, []byte(sampleJSON), mtio.FormatJSON, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache reads: %+v", third.CacheInfo)
	}
}

func TestRunnerPartialArtifactHit(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())

	if _, err := r.Execute(ctx, []byte(sampleJSON), mtio.FormatJSON, Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, []byte(sampleJSON), mtio.FormatJSON, Options{Formats: []string{FormatSVG, FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("RenderHit should be false when html was rendered")
	}
	if len(res.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(res.Artifacts))
	}
}

func TestRunnerCorruptLayoutEntry(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())

	root := &tree.Node{Name: "r"}
	opts := Options{}
	opts.SetLayoutDefaults()
	hash, err := TreeHash(root)
	if err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	c.data[key] = []byte("not json")

	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit || l.NodeCount != 1 {
		t.Errorf("hit = %v NodeCount = %d", hit, l.NodeCount)
	}
	if strings.HasPrefix(string(c.data[key]), "not") {
		t.Error("corrupt entry should be overwritten")
	}
}

func TestRunnerErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	tests := []struct {
		name  string
		input string
		opts  Options
		code  apperr.Code
	}{
		{"malformed", `{`, Options{}, apperr.ErrCodeInvalidJSON},
		{"shape", `{"name": 3}`, Options{}, apperr.ErrCodeInvalidShape},
		{"canvas", sampleJSON, Options{Width: -1}, apperr.ErrCodeInvalidCanvas},
		{"format", sampleJSON, Options{Formats: []string{"bmp"}}, apperr.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), []byte(tt.input), mtio.FormatJSON, tt.opts)
			if !apperr.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("Cache = %T, want NullCache", r.Cache)
	}
	if r.Keyer == nil || r.Logger == nil {
		t.Error("keyer and logger should default")
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}

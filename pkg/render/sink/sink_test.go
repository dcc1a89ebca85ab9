package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"strings"
	"testing"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

const exampleInput = `{"name":"Root","children":[{"name":"A","summary":"s1"},{"name":"B","link":"https://x.test","summary":"s2"}]}`

func mustLayout(t *testing.T, input string) *layout.Layout {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatal(err)
	}
	root, err := tree.Build(v)
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(root, layout.Canvas{Width: 960, Height: 440}, layout.DefaultMargins())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSVGSurface(t *testing.T) {
	s := NewSVGSurface(960, 440)
	if _, err := scene.Render(mustLayout(t, exampleInput), s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(s.Bytes())

	checks := []struct {
		name  string
		sub   string
		count int
	}{
		{"Viewport", `id="viewport"`, 1},
		{"Connectors", "<path", 2},
		{"Nodes", `class="node"`, 3},
		{"Circles", "<circle", 3},
		{"Labels", "<text", 3},
		{"Icons", "<image", 1},
		{"LinkAttr", `data-link="https://x.test"`, 1},
		{"Titles", "<title>", 2},
		{"ConnectorPath", `d="M760,120 C440,120 440,220 120,220"`, 1},
		{"EndAnchor", `text-anchor="end"`, 1},
		{"StartAnchor", `text-anchor="start"`, 2},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if got := strings.Count(out, c.sub); got != c.count {
				t.Errorf("%q appears %d times, want %d", c.sub, got, c.count)
			}
		})
	}

	if !strings.Contains(out, "<title>s1</title>") {
		t.Error("summary title missing")
	}
	if strings.Index(out, "<path") > strings.Index(out, `class="node"`) {
		t.Error("connectors must be written before nodes")
	}
}

func TestSVGEscapesContent(t *testing.T) {
	l := mustLayout(t, `{"name":"<b>&","summary":"a \"quoted\" <tip>","link":"https://x.test/?a=1&b=2"}`)
	out, err := RenderSVG(scene.Build(l))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, bad := range []string{"<b>&", "<tip>", "a=1&b"} {
		if strings.Contains(s, bad) {
			t.Errorf("output contains unescaped %q", bad)
		}
	}
	if !strings.Contains(s, "&lt;b&gt;&amp;") {
		t.Error("label not escaped")
	}
}

func TestSVGSurfaceClear(t *testing.T) {
	s := NewSVGSurface(960, 440)
	if err := s.Draw(scene.Build(mustLayout(t, exampleInput))); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if s.Bytes() != nil {
		t.Error("Bytes after Clear should be nil")
	}
	if err := s.Draw(nil); err == nil {
		t.Error("Draw(nil) should fail")
	}
}

func TestSVGOptions(t *testing.T) {
	out, err := RenderSVG(scene.Build(mustLayout(t, exampleInput)),
		WithBackground("#212529"),
		WithViewportTransform("translate(10,0) scale(2)"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "fill:#212529") {
		t.Error("background missing")
	}
	if !strings.Contains(s, `transform="translate(10,0) scale(2)"`) {
		t.Error("viewport transform missing")
	}
}

func TestSVGGrowsToContent(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"name":"root","children":[`)
	for i := range 40 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"name":"n"}`)
	}
	b.WriteString("]}")

	s := NewSVGSurface(960, 440)
	h, err := scene.Render(mustLayout(t, b.String()), s)
	if err != nil {
		t.Fatal(err)
	}
	if h.Scene.Height <= 440 {
		t.Fatalf("scene height %v does not exceed the viewport", h.Scene.Height)
	}
	if !bytes.Contains(s.Bytes(), []byte("height=\"")) || bytes.Contains(s.Bytes(), []byte(`height="440"`)) {
		t.Error("document should be sized to the content, not the viewport")
	}
}

func TestHTMLSurface(t *testing.T) {
	s := NewHTMLSurface(960, 440, WithTitle("Plans <draft>"))
	if _, err := scene.Render(mustLayout(t, exampleInput), s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(s.Bytes())

	for _, want := range []string{
		`<div class="scroll-container">`,
		`id="viewport"`,
		`id="tooltip"`,
		"max-width: 300px",
		"rgba(0, 0, 0, 0.8)",
		`"minScale":0.5`,
		`"maxScale":2`,
		`"fadeInMs":200`,
		`"fadeOutMs":500`,
		`"opacity":0.9`,
		`window.open(link, "_blank"`,
		`safeLink(node.dataset.link || "")`,
		`indexOf("https://") !== 0`,
		`tip.style.transition = "none"`,
		"<title>Plans &lt;draft&gt;</title>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "<?xml") {
		t.Error("page contains an XML declaration")
	}
}

func TestHTMLInteraction(t *testing.T) {
	opts := interact.DefaultOptions()
	opts.MinScale, opts.MaxScale = 0.25, 4
	out, err := RenderHTML(scene.Build(mustLayout(t, exampleInput)), WithInteraction(InteractionFrom(opts)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte(`"minScale":0.25`)) || !bytes.Contains(out, []byte(`"maxScale":4`)) {
		t.Error("scale extent not passed to the page")
	}
}

func TestPNGSurface(t *testing.T) {
	s := NewPNGSurface(960, 440, WithScale(1))
	if _, err := scene.Render(mustLayout(t, exampleInput), s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 960 || b.Dy() != 440 {
		t.Fatalf("image is %dx%d, want 960x440", b.Dx(), b.Dy())
	}

	// Root circle center.
	r, g, b, _ := img.At(120, 220).RGBA()
	if r>>8 != 0x00 || g>>8 != 0x7b || b>>8 != 0xff {
		t.Errorf("root center = #%02x%02x%02x, want #007bff", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(2, 2).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("corner = #%02x%02x%02x, want white background", r>>8, g>>8, b>>8)
	}

	s.Clear()
	if s.Image() != nil {
		t.Error("Image after Clear should be nil")
	}
	if err := s.EncodePNG(&bytes.Buffer{}); err == nil {
		t.Error("EncodePNG with nothing drawn should fail")
	}
}

func TestPNGScale(t *testing.T) {
	data, err := RenderPNG(scene.Build(mustLayout(t, exampleInput)))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1920 || cfg.Height != 880 {
		t.Errorf("image is %dx%d, want 1920x880", cfg.Width, cfg.Height)
	}
}

func TestCheckRaster(t *testing.T) {
	if err := CheckRaster(960, 440, 2); err != nil {
		t.Errorf("default canvas: %v", err)
	}
	for _, sz := range [][3]float64{{1e9, 1e9, 2}, {960, 1e5, 2}, {960, 440, 1e3}, {960, math.NaN(), 2}} {
		if err := CheckRaster(sz[0], sz[1], sz[2]); !apperr.Is(err, apperr.ErrCodeInvalidCanvas) {
			t.Errorf("CheckRaster%v = %v, want INVALID_CANVAS", sz, err)
		}
	}

	p := NewPNGSurface(960, 440)
	err := p.Draw(&scene.Scene{Width: 960, Height: 1e6})
	if !apperr.Is(err, apperr.ErrCodeInvalidCanvas) || p.Image() != nil {
		t.Errorf("oversized Draw = %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in         string
		r, g, b, a uint8
		wantErr    bool
	}{
		{in: "#007bff", r: 0x00, g: 0x7b, b: 0xff, a: 0xff},
		{in: "#fff", r: 0xff, g: 0xff, b: 0xff, a: 0xff},
		{in: "#00000080", a: 0x80},
		{in: "red", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := parseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			r, g, b, a := c.RGBA()
			if a>>8 != uint32(tt.a) {
				t.Errorf("alpha = %d, want %d", a>>8, tt.a)
			}
			if tt.a == 0xff && (r>>8 != uint32(tt.r) || g>>8 != uint32(tt.g) || b>>8 != uint32(tt.b)) {
				t.Errorf("rgb = %d,%d,%d", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	l := mustLayout(t, exampleInput)
	data, err := RenderLayoutJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutJSON(data)
	if err != nil {
		t.Fatalf("ReadLayoutJSON: %v", err)
	}

	if got.NodeCount != l.NodeCount || got.Canvas != l.Canvas || got.Margins != l.Margins || got.Bounds != l.Bounds {
		t.Errorf("header mismatch: %+v vs %+v", got, l)
	}
	want, gotNodes := l.Nodes(), got.Nodes()
	for i := range want {
		if want[i].Point() != gotNodes[i].Point() || want[i].Path.String() != gotNodes[i].Path.String() {
			t.Errorf("node %d: %+v vs %+v", i, gotNodes[i].Point(), want[i].Point())
		}
		if (want[i].Parent == nil) != (gotNodes[i].Parent == nil) ||
			(want[i].Parent != nil && *want[i].Parent != *gotNodes[i].Parent) {
			t.Errorf("node %d parent differs", i)
		}
	}

	a, _ := RenderSVG(scene.Build(l))
	b, _ := RenderSVG(scene.Build(got))
	if !bytes.Equal(a, b) {
		t.Error("restored layout renders differently")
	}
}

func TestLayoutJSONEmptyName(t *testing.T) {
	l := mustLayout(t, `{"name":"root","children":[{"name":""}]}`)
	data, err := RenderLayoutJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutJSON(data)
	if err != nil {
		t.Fatalf("ReadLayoutJSON: %v", err)
	}
	if got.NodeCount != 2 || len(got.Root.Children) != 1 || got.Root.Children[0].Node.Name != "" {
		t.Errorf("restored %d nodes, children %+v", got.NodeCount, got.Root.Children)
	}
}

func TestReadLayoutJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code apperr.Code
	}{
		{"Malformed", `{`, apperr.ErrCodeInvalidJSON},
		{"Version", `{"version":2,"root":{"name":"a"}}`, apperr.ErrCodeInvalidFormat},
		{"NoRoot", `{"version":1}`, apperr.ErrCodeInvalidFormat},
		{"NullChild", `{"version":1,"root":{"name":"a","children":[null]}}`, apperr.ErrCodeInvalidFormat},
		{"Generation", `{"version":1,"root":{"name":"a","children":[{"name":"b","generation":3}]}}`, apperr.ErrCodeInvalidFormat},
		{"Count", `{"version":1,"node_count":5,"root":{"name":"a"}}`, apperr.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLayoutJSON([]byte(tt.in))
			if !apperr.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
	if _, err := RenderLayoutJSON(nil); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("nil layout: %v", err)
	}
}

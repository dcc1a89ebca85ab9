package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

const (
	// DefaultPNGScale renders at twice the scene resolution.
	DefaultPNGScale = 2.0

	// MaxPNGPixels bounds the raster size, 256 MiB of RGBA.
	MaxPNGPixels = 64 << 20
)

// CheckRaster reports an INVALID_CANVAS error when a w x h scene drawn at
// scale would need more than [MaxPNGPixels] pixels.
func CheckRaster(w, h, scale float64) error {
	pw, ph := math.Ceil(w*scale), math.Ceil(h*scale)
	if !(pw*ph <= MaxPNGPixels) {
		return apperr.New(apperr.ErrCodeInvalidCanvas, "png: %gx%g raster exceeds %d pixels", pw, ph, MaxPNGPixels)
	}
	return nil
}

// PNGOption configures a [PNGSurface].
type PNGOption func(*PNGSurface)

// WithScale sets the pixel ratio of the raster.
func WithScale(s float64) PNGOption {
	return func(p *PNGSurface) {
		if s > 0 {
			p.scale = s
		}
	}
}

// WithPNGBackground sets the color behind the scene. Empty leaves the
// image transparent.
func WithPNGBackground(c string) PNGOption {
	return func(p *PNGSurface) { p.background = c }
}

// PNGSurface is a [scene.Surface] that rasterises scenes. Native titles
// have no raster form and are skipped.
type PNGSurface struct {
	Width, Height float64

	scale      float64
	background string
	img        image.Image
}

var _ scene.Surface = (*PNGSurface)(nil)

// NewPNGSurface returns an empty raster surface with the given viewport.
func NewPNGSurface(width, height float64, opts ...PNGOption) *PNGSurface {
	p := &PNGSurface{Width: width, Height: height, scale: DefaultPNGScale, background: "#ffffff"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size implements [scene.Surface].
func (p *PNGSurface) Size() (w, h float64) { return p.Width, p.Height }

// Clear implements [scene.Surface].
func (p *PNGSurface) Clear() { p.img = nil }

// Draw implements [scene.Surface].
func (p *PNGSurface) Draw(sc *scene.Scene) error {
	if sc == nil {
		return fmt.Errorf("png: nil scene")
	}
	if err := CheckRaster(sc.Width, sc.Height, p.scale); err != nil {
		return err
	}
	w := int(math.Ceil(sc.Width * p.scale))
	h := int(math.Ceil(sc.Height * p.scale))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("png: empty scene %vx%v", sc.Width, sc.Height)
	}

	dc := gg.NewContext(w, h)
	if p.background != "" {
		c, err := parseColor(p.background)
		if err != nil {
			return err
		}
		dc.SetColor(c)
		dc.Clear()
	}
	dc.Scale(p.scale, p.scale)

	r := rasterizer{dc: dc}
	for _, c := range sc.Commands {
		if err := r.draw(c); err != nil {
			return err
		}
	}
	p.img = dc.Image()
	return nil
}

// Image returns the raster, or nil when nothing is drawn.
func (p *PNGSurface) Image() image.Image { return p.img }

// EncodePNG writes the raster to w.
func (p *PNGSurface) EncodePNG(w io.Writer) error {
	if p.img == nil {
		return fmt.Errorf("png: nothing drawn")
	}
	return png.Encode(w, p.img)
}

// Bytes returns the encoded raster, or nil when nothing is drawn.
func (p *PNGSurface) Bytes() ([]byte, error) {
	if p.img == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderPNG rasterises sc.
func RenderPNG(sc *scene.Scene, opts ...PNGOption) ([]byte, error) {
	if sc == nil {
		return nil, fmt.Errorf("png: nil scene")
	}
	p := NewPNGSurface(sc.Width, sc.Height, opts...)
	if err := p.Draw(sc); err != nil {
		return nil, err
	}
	return p.Bytes()
}

type rasterizer struct {
	dc *gg.Context
}

func (r rasterizer) draw(c scene.Command) error {
	dc := r.dc
	switch c := c.(type) {
	case scene.Path:
		dc.NewSubPath()
		dc.MoveTo(c.From.X, c.From.Y)
		dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
		return r.paint(c.Paint)
	case scene.Group:
		dc.Push()
		defer dc.Pop()
		dc.Translate(c.X, c.Y)
		for _, it := range c.Items {
			if err := r.draw(it); err != nil {
				return err
			}
		}
	case scene.Rect:
		dc.DrawRectangle(c.X, c.Y, c.W, c.H)
		return r.paint(c.Paint)
	case scene.Circle:
		dc.DrawCircle(c.CX, c.CY, c.R)
		return r.paint(c.Paint)
	case scene.Icon:
		return r.icon(c)
	case scene.Text:
		col, err := parseColor(c.Fill)
		if err != nil {
			return err
		}
		if f := fontFace(c.Font.Size); f != nil {
			dc.SetFontFace(f)
		}
		dc.SetColor(col)
		ax := 0.0
		if c.Anchor == scene.AnchorEnd {
			ax = 1
		}
		dc.DrawStringAnchored(c.Content, c.X, c.Y+c.DY*c.Font.Size, ax, 0)
	}
	return nil
}

// paint fills then strokes the current path.
func (r rasterizer) paint(p scene.Paint) error {
	dc := r.dc
	if p.Fill != "" && p.Fill != "none" {
		c, err := parseColor(p.Fill)
		if err != nil {
			return err
		}
		dc.SetColor(c)
		if p.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if p.Stroke != "" {
		c, err := parseColor(p.Stroke)
		if err != nil {
			return err
		}
		dc.SetColor(c)
		dc.SetLineWidth(p.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

// icon draws a link glyph in place of the image, which gg cannot decode.
func (r rasterizer) icon(c scene.Icon) error {
	dc := r.dc
	dc.DrawRoundedRectangle(c.X+2, c.Y+2, c.W-4, c.H-4, 3)
	if err := r.paint(scene.Paint{Fill: "#ffffff", Stroke: "#333333", StrokeWidth: 1}); err != nil {
		return err
	}
	dc.MoveTo(c.X+c.W*0.35, c.Y+c.H*0.65)
	dc.LineTo(c.X+c.W*0.7, c.Y+c.H*0.3)
	dc.MoveTo(c.X+c.W*0.45, c.Y+c.H*0.3)
	dc.LineTo(c.X+c.W*0.7, c.Y+c.H*0.3)
	dc.LineTo(c.X+c.W*0.7, c.Y+c.H*0.55)
	return r.paint(scene.Paint{Stroke: "#333333", StrokeWidth: 1.5})
}

var (
	fontOnce  sync.Once
	fontErr   error
	fontTTF   *truetype.Font
	facesMu   sync.Mutex
	faceCache = map[float64]font.Face{}
)

// fontFace returns the Go sans-serif face at size points, falling back to
// gg's built-in face if the embedded font cannot be parsed.
func fontFace(size float64) font.Face {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f
	}
	f := truetype.NewFace(fontTTF, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	faceCache[size] = f
	return f
}

// parseColor reads the CSS colors a theme uses: #rgb, #rrggbb and
// #rrggbbaa.
func parseColor(s string) (color.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 || !strings.HasPrefix(strings.TrimSpace(s), "#") {
		return nil, fmt.Errorf("png: unsupported color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("png: unsupported color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

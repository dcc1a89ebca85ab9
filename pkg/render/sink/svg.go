package sink

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

// ViewportID is the id of the group holding the whole scene. Pan and zoom
// transform this one element.
const ViewportID = "viewport"

// SVGOption configures an [SVGSurface].
type SVGOption func(*SVGSurface)

// WithBackground fills the document with a solid color before drawing.
func WithBackground(color string) SVGOption {
	return func(s *SVGSurface) { s.background = color }
}

// WithViewportTransform sets the initial transform attribute of the
// viewport group, such as "translate(10,0) scale(1.5)".
func WithViewportTransform(t string) SVGOption {
	return func(s *SVGSurface) { s.transform = t }
}

// SVGSurface is a [scene.Surface] producing a standalone SVG document.
// Width and Height are the viewport; the document grows to the scene's
// content size when the tree does not fit.
type SVGSurface struct {
	Width, Height float64

	background string
	transform  string
	buf        bytes.Buffer
	drawn      bool
}

var _ scene.Surface = (*SVGSurface)(nil)

// NewSVGSurface returns an empty surface with the given viewport.
func NewSVGSurface(width, height float64, opts ...SVGOption) *SVGSurface {
	s := &SVGSurface{Width: width, Height: height}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size implements [scene.Surface].
func (s *SVGSurface) Size() (w, h float64) { return s.Width, s.Height }

// Clear implements [scene.Surface].
func (s *SVGSurface) Clear() {
	s.buf.Reset()
	s.drawn = false
}

// Draw implements [scene.Surface].
func (s *SVGSurface) Draw(sc *scene.Scene) error {
	if sc == nil {
		return fmt.Errorf("svg: nil scene")
	}
	s.buf.Reset()
	writeSVG(&s.buf, sc, s.background, s.transform)
	s.drawn = true
	return nil
}

// Bytes returns the document, or nil when nothing is drawn.
func (s *SVGSurface) Bytes() []byte {
	if !s.drawn {
		return nil
	}
	return bytes.Clone(s.buf.Bytes())
}

// WriteTo writes the document to w.
func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.buf.Bytes())
	return int64(n), err
}

// RenderSVG draws sc as an SVG document.
func RenderSVG(sc *scene.Scene, opts ...SVGOption) ([]byte, error) {
	if sc == nil {
		return nil, fmt.Errorf("svg: nil scene")
	}
	s := NewSVGSurface(sc.Width, sc.Height, opts...)
	if err := s.Draw(sc); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

func writeSVG(w io.Writer, sc *scene.Scene, background, transform string) {
	width, height := px(sc.Width), px(sc.Height)
	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	if background != "" {
		canvas.Rect(0, 0, width, height, "fill:"+background)
	}

	if transform != "" {
		canvas.Group(attr("id", ViewportID), attr("transform", transform))
	} else {
		canvas.Gid(ViewportID)
	}
	for _, c := range sc.Commands {
		writeCommand(canvas, c)
	}
	canvas.Gend()
	canvas.End()
}

func writeCommand(canvas *svg.SVG, c scene.Command) {
	switch c := c.(type) {
	case scene.Path:
		canvas.Path(c.D(), paint(c.Paint))
	case scene.Group:
		attrs := []string{
			`class="node"`,
			attr("transform", fmt.Sprintf("translate(%d,%d)", px(c.X), px(c.Y))),
			attr("data-path", c.Path.String()),
		}
		for _, it := range c.Items {
			switch it := it.(type) {
			case scene.Icon:
				attrs = append(attrs, attr("data-link", it.Link))
			case scene.Title:
				attrs = append(attrs, attr("data-summary", it.Content))
			}
		}
		canvas.Group(attrs...)
		for _, it := range c.Items {
			writeCommand(canvas, it)
		}
		canvas.Gend()
	case scene.Rect:
		canvas.Rect(px(c.X), px(c.Y), px(c.W), px(c.H), `class="backing"`, paint(c.Paint))
	case scene.Circle:
		canvas.Circle(px(c.CX), px(c.CY), px(c.R), paint(c.Paint))
	case scene.Icon:
		canvas.Image(px(c.X), px(c.Y), px(c.W), px(c.H), c.Href, `class="link-icon"`, "cursor:pointer")
	case scene.Text:
		canvas.Text(px(c.X), px(c.Y), c.Content,
			attr("text-anchor", string(c.Anchor)),
			attr("dy", fmt.Sprintf("%gem", c.DY)),
			fmt.Sprintf("font-family:%s;font-size:%gpx;fill:%s", c.Font.Family, c.Font.Size, c.Fill))
	case scene.Title:
		canvas.Title(c.Content)
	}
}

// paint renders a style attribute. svgo treats arguments without "=" as
// style declarations.
func paint(p scene.Paint) string {
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	s := "fill:" + fill
	if p.Stroke != "" {
		s += fmt.Sprintf(";stroke:%s;stroke-width:%g", p.Stroke, p.StrokeWidth)
	}
	return s
}

func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func px(v float64) int {
	return int(math.Round(v))
}

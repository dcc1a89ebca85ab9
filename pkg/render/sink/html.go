package sink

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

// Interaction carries the controller settings into the page script so the
// browser behaves like [interact.Controller].
type Interaction struct {
	MinScale      float64 `json:"minScale"`
	MaxScale      float64 `json:"maxScale"`
	FadeInMs      int64   `json:"fadeInMs"`
	FadeOutMs     int64   `json:"fadeOutMs"`
	Opacity       float64 `json:"opacity"`
	OffsetX       float64 `json:"offsetX"`
	OffsetY       float64 `json:"offsetY"`
	DragThreshold float64 `json:"dragThreshold"`
	WheelFactor   float64 `json:"wheelFactor"`
}

// InteractionFrom converts controller options.
func InteractionFrom(o interact.Options) Interaction {
	return Interaction{
		MinScale:      o.MinScale,
		MaxScale:      o.MaxScale,
		FadeInMs:      o.FadeIn.Milliseconds(),
		FadeOutMs:     o.FadeOut.Milliseconds(),
		Opacity:       o.TooltipOpacity,
		OffsetX:       o.TooltipOffset.X,
		OffsetY:       o.TooltipOffset.Y,
		DragThreshold: o.DragThreshold,
		WheelFactor:   o.WheelFactor,
	}
}

// HTMLOption configures an [HTMLSurface].
type HTMLOption func(*HTMLSurface)

// WithTitle sets the page title.
func WithTitle(title string) HTMLOption {
	return func(s *HTMLSurface) { s.title = title }
}

// WithInteraction overrides the page behavior.
func WithInteraction(i Interaction) HTMLOption {
	return func(s *HTMLSurface) { s.interaction = i }
}

// WithSVGOptions passes options to the embedded SVG.
func WithSVGOptions(opts ...SVGOption) HTMLOption {
	return func(s *HTMLSurface) { s.svgOpts = opts }
}

// HTMLSurface is a [scene.Surface] producing a self-contained page: a
// scrollable container with the SVG, the tooltip panel and the script for
// pan, zoom, tooltips and link navigation.
type HTMLSurface struct {
	Width, Height float64

	title       string
	interaction Interaction
	svgOpts     []SVGOption
	buf         bytes.Buffer
	drawn       bool
}

var _ scene.Surface = (*HTMLSurface)(nil)

// NewHTMLSurface returns an empty page surface with the given viewport.
func NewHTMLSurface(width, height float64, opts ...HTMLOption) *HTMLSurface {
	s := &HTMLSurface{
		Width:       width,
		Height:      height,
		title:       "Mind Map",
		interaction: InteractionFrom(interact.DefaultOptions()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size implements [scene.Surface].
func (s *HTMLSurface) Size() (w, h float64) { return s.Width, s.Height }

// Clear implements [scene.Surface].
func (s *HTMLSurface) Clear() {
	s.buf.Reset()
	s.drawn = false
}

// Draw implements [scene.Surface].
func (s *HTMLSurface) Draw(sc *scene.Scene) error {
	if sc == nil {
		return fmt.Errorf("html: nil scene")
	}
	var doc bytes.Buffer
	writeSVG(&doc, sc, "", "")

	s.buf.Reset()
	err := pageTemplate.Execute(&s.buf, pageData{
		Title:       s.title,
		SVG:         template.HTML(stripXMLDecl(doc.Bytes())),
		Interaction: s.interaction,
	})
	if err != nil {
		s.buf.Reset()
		return fmt.Errorf("html: %w", err)
	}
	s.drawn = true
	return nil
}

// Bytes returns the page, or nil when nothing is drawn.
func (s *HTMLSurface) Bytes() []byte {
	if !s.drawn {
		return nil
	}
	return bytes.Clone(s.buf.Bytes())
}

// WriteTo writes the page to w.
func (s *HTMLSurface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.buf.Bytes())
	return int64(n), err
}

// RenderHTML draws sc as an interactive page.
func RenderHTML(sc *scene.Scene, opts ...HTMLOption) ([]byte, error) {
	if sc == nil {
		return nil, fmt.Errorf("html: nil scene")
	}
	s := NewHTMLSurface(sc.Width, sc.Height, opts...)
	if err := s.Draw(sc); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// stripXMLDecl drops the XML prolog, which has no place inside HTML.
func stripXMLDecl(b []byte) []byte {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		return b[i:]
	}
	return b
}

type pageData struct {
	Title       string
	SVG         template.HTML
	Interaction Interaction
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #212529; }
  .scroll-container { width: 100%; height: 100vh; overflow: auto; }
  .scroll-container svg { display: block; cursor: grab; touch-action: none; }
  .scroll-container svg.dragging { cursor: grabbing; }
  .node { cursor: default; }
  .node[data-link] { cursor: pointer; }
  .tooltip {
    position: absolute;
    padding: 10px;
    font: 12px sans-serif;
    background: rgba(0, 0, 0, 0.8);
    color: white;
    border-radius: 4px;
    pointer-events: none;
    box-shadow: 0 2px 4px rgba(0, 0, 0, 0.2);
    max-width: 300px;
    word-wrap: break-word;
    opacity: 0;
  }
</style>
</head>
<body>
<div class="scroll-container">
{{.SVG}}
</div>
<div class="tooltip" id="tooltip"></div>
<script>
(function () {
  const cfg = {{.Interaction}};
  const svg = document.querySelector(".scroll-container svg");
  const viewport = document.getElementById("viewport");
  const tip = document.getElementById("tooltip");
  let t = { x: 0, y: 0, k: 1 };
  let drag = null;
  let suppressClick = false;
  let hovered = null;

  function apply() {
    viewport.setAttribute("transform", "translate(" + t.x + "," + t.y + ") scale(" + t.k + ")");
  }
  function local(ev) {
    const r = svg.getBoundingClientRect();
    return { x: ev.clientX - r.left, y: ev.clientY - r.top };
  }
  function zoomAt(p, factor) {
    const k = Math.min(cfg.maxScale, Math.max(cfg.minScale, t.k * factor));
    const sx = (p.x - t.x) / t.k, sy = (p.y - t.y) / t.k;
    t = { x: p.x - sx * k, y: p.y - sy * k, k: k };
    apply();
  }
  let fadingOut = false;
  function fade(to, ms) {
    tip.style.transition = "opacity " + ms + "ms";
    tip.style.opacity = to;
  }
  function show() {
    if (fadingOut && parseFloat(getComputedStyle(tip).opacity) > 0) {
      tip.style.transition = "none";
      tip.style.opacity = cfg.opacity;
    } else {
      fade(cfg.opacity, cfg.fadeInMs);
    }
    fadingOut = false;
  }
  // Only http and https links open, as in the Go navigator.
  function safeLink(link) {
    const lower = link.toLowerCase();
    if (lower.indexOf("http://") !== 0 && lower.indexOf("https://") !== 0) return "";
    for (const ch of link) {
      if (ch <= " " || ch === "\u007f") return "";
    }
    return link;
  }
  tip.addEventListener("transitionend", function () { fadingOut = false; });

  svg.addEventListener("wheel", function (ev) {
    ev.preventDefault();
    zoomAt(local(ev), Math.pow(2, -ev.deltaY * cfg.wheelFactor));
  }, { passive: false });
  svg.addEventListener("pointerdown", function (ev) {
    if (ev.button !== 0) return;
    const p = local(ev);
    drag = { x: p.x, y: p.y, tx: t.x, ty: t.y, moved: false };
    suppressClick = false;
  });
  window.addEventListener("pointermove", function (ev) {
    if (!drag) return;
    const p = local(ev);
    const dx = p.x - drag.x, dy = p.y - drag.y;
    if (!drag.moved && Math.hypot(dx, dy) > cfg.dragThreshold) {
      drag.moved = true;
      svg.classList.add("dragging");
    }
    if (drag.moved) {
      t.x = drag.tx + dx;
      t.y = drag.ty + dy;
      apply();
    }
  });
  window.addEventListener("pointerup", function () {
    if (drag && drag.moved) suppressClick = true;
    drag = null;
    svg.classList.remove("dragging");
  });

  document.querySelectorAll(".node").forEach(function (node) {
    const summary = node.dataset.summary || "";
    const link = safeLink(node.dataset.link || "");
    node.querySelectorAll("title").forEach(function (el) { el.remove(); });
    node.addEventListener("mouseover", function (ev) {
      if (hovered === node) return;
      hovered = node;
      tip.textContent = summary;
      tip.style.left = (ev.pageX + cfg.offsetX) + "px";
      tip.style.top = (ev.pageY + cfg.offsetY) + "px";
      show();
    });
    node.addEventListener("mouseout", function (ev) {
      if (node.contains(ev.relatedTarget)) return;
      hovered = null;
      fadingOut = true;
      fade(0, cfg.fadeOutMs);
    });
    node.addEventListener("click", function () {
      if (suppressClick) {
        suppressClick = false;
        return;
      }
      if (link) window.open(link, "_blank", "noopener");
    });
  });
})();
</script>
</body>
</html>
`))

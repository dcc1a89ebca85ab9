// Package sink provides drawing surfaces and file formats for mind maps.
//
// # Overview
//
// Every surface implements [scene.Surface], so the same render cycle that
// drives the in-memory recorder can draw into a document:
//
//   - [SVGSurface]: standalone SVG written with svgo
//   - [HTMLSurface]: scrollable page with pan, zoom, tooltips and links
//   - [PNGSurface]: raster image drawn with gg
//
// [RenderSVG], [RenderHTML] and [RenderPNG] are shortcuts that size the
// surface to the scene.
//
// # SVG Output
//
// All commands are placed inside one group with id [ViewportID]; pan and
// zoom rewrite only that group's transform. Each node group carries
// data-path, data-summary and data-link attributes so page scripts can
// find the node behind an element without another lookup table.
//
// # HTML Output
//
// The page embeds the SVG and a script configured from [Interaction],
// which [InteractionFrom] derives from [interact.Options]: the same scale
// extent, fade timings and drag threshold as the Go controller. Links open
// in a new browsing context.
//
// # Layout Files
//
// [RenderLayoutJSON] and [ReadLayoutJSON] store a computed layout so it
// can be cached or rendered again with different surfaces:
//
//	data, err := sink.RenderLayoutJSON(l)
//	l2, err := sink.ReadLayoutJSON(data)
//	svg, err := sink.RenderSVG(scene.Build(l2))
//
// [scene.Surface]: github.com/matzehuels/mindtree/pkg/mindmap/scene.Surface
// [interact.Options]: github.com/matzehuels/mindtree/pkg/mindmap/interact.Options
package sink

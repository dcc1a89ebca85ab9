// Package scene turns a positioned mind map into draw commands.
//
// # Overview
//
// [Build] is a pure function from a [layout.Layout] to a [Scene]: an ordered,
// immutable list of [Command] values (connector paths, then one [Group] per
// node holding its backing rectangle, circle, optional link icon, label and
// title). Nothing in this package touches a real canvas.
//
// [Render] hands a scene to a [Surface], the thin adapter that owns the
// actual drawing target (an SVG document, a PNG image, a terminal view or the
// in-memory [Recorder]). Render clears the surface before drawing, so
// rendering the same layout twice leaves exactly one scene behind. It returns
// a [Handle] describing the on-screen region of every node, which the
// interaction controller queries for hit tests.
//
// # Coordinates
//
// Scene space is the layout's screen space: x grows with depth and includes
// the left margin, y grows with breadth and includes the top margin. Surfaces
// apply the pan/zoom transform on top of it.
//
// # Labels
//
// Which side a label sits on is decided once, by [LabelAnchor]: nodes with
// children put their label before the circle, leaves after it, so text never
// runs into the direction the tree grows. Label sizes come from a [Measurer];
// the backing rectangle follows the measured size but never moves nodes.
package scene

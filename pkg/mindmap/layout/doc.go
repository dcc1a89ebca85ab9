// Package layout positions a mind map tree on a left-to-right canvas.
//
// # Overview
//
// [Compute] assigns every [tree.Node] two coordinates: a depth coordinate
// that grows linearly with generation (root at 0) and a breadth coordinate
// chosen so that each parent is centered over its children and no two
// sibling subtrees overlap. The result is a [Layout] holding a mirror tree of
// [PositionedNode] values; the input tree is never modified.
//
// # Algorithm
//
// Both breadth strategies belong to the Reingold-Tilford family: a post-order
// walk places children in input order and centers each parent between its
// first and last child, then a pre-order walk accumulates relative offsets
// into absolute positions. Siblings are separated by one unit and cousins by
// two.
//
// By default every subtree occupies its own band, so the breadth ranges of
// sibling subtrees are disjoint. [WithContourPacking] switches to the
// linear-time variant of Buchheim, Jünger and Leipert ("Improving Walker's
// Algorithm to Run in Linear Time", 2002), which threads subtree contours and
// packs subtrees as tightly as each generation allows.
//
// Units are then scaled to fill the breadth extent (canvas height minus the
// vertical margins). The scale never drops below [DefaultMinSeparation]
// pixels per unit, so wide trees grow beyond the canvas instead of
// overlapping; [Layout.Bounds] reports the resulting extents.
//
// # Screen mapping
//
// Trees grow left to right:
//
//	x = Margins.Left + DepthCoord
//	y = Margins.Top  + BreadthCoord
//
// # Errors
//
// Canvases with zero, negative or non-finite dimensions, and margins that
// leave no drawable area, fail with [*Error], which carries the
// INVALID_CANVAS code.
package layout

// Package nodelink exports a mind map layout as Graphviz DOT.
//
// The export is a plain node-link diagram of the same tree: one node per
// topic, one edge per parent/child pair. Summaries become tooltips and links
// become URL attributes, so Graphviz's SVG output keeps both.
//
// # Positions
//
// With [Options.Pinned] every node carries the position computed by the
// mind map layout, in points with the y axis flipped for Graphviz:
//
//	mindtree render notes.json -f dot
//	neato -n2 -Tsvg notes.dot > notes.gv.svg
//
// Without pinning Graphviz is free to lay the tree out itself (rankdir=LR
// keeps the left-to-right reading order of the mind map).
package nodelink

package nodelink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
)

// Options configures the DOT export.
type Options struct {
	// Pinned writes layout positions as pos="x,y!" attributes.
	Pinned bool
}

// ToDOT converts a layout to Graphviz DOT source. Node IDs are tree paths,
// which are unique even when names repeat.
func ToDOT(l *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#cccccc\"];\n")
	if opts.Pinned {
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	_, height := l.ContentSize()
	nodes := l.Nodes()
	for _, n := range nodes {
		attrs := fmtAttrs(n)
		if opts.Pinned {
			x, y := l.Screen(n.Point())
			attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", x, height-y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(n), nodeID(c))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID spells a path as n, n0, n0_2, ...
func nodeID(n *layout.PositionedNode) string {
	parts := make([]string, len(n.Path))
	for i, idx := range n.Path {
		parts[i] = strconv.Itoa(idx)
	}
	return "n" + strings.Join(parts, "_")
}

func fmtAttrs(n *layout.PositionedNode) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Node.Name)}
	if n.Node.Summary != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Node.Summary))
	}
	if n.Node.HasLink() {
		attrs = append(attrs, fmt.Sprintf("URL=%q", n.Node.Link), `target="_blank"`, "fontcolor=\"#0366d6\"")
	}
	if n.Path.Depth() == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

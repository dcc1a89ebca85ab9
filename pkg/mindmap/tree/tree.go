package tree

import (
	"strconv"
	"strings"
)

// Node is a labeled entry of the mind map hierarchy.
type Node struct {
	Name     string  // Display label (required)
	Summary  string  // Tooltip text, empty when absent
	Link     string  // External URL, empty when absent
	Children []*Node // Ordered children; empty for leaves
}

// HasLink reports whether the node carries an external link.
func (n *Node) HasLink() bool { return n.Link != "" }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Height returns the largest generation below n (0 for a leaf).
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		h = max(h, c.Height()+1)
	}
	return h
}

// Walk visits n and its descendants in pre-order, passing each node's path
// relative to n. Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(p Path, n *Node) bool) {
	n.walk(Path{}, fn)
}

func (n *Node) walk(p Path, fn func(Path, *Node) bool) {
	if !fn(p, n) {
		return
	}
	for i, c := range n.Children {
		c.walk(p.Child(i), fn)
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	out := &Node{Name: n.Name, Summary: n.Summary, Link: n.Link}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Path locates a node by the child indices leading to it from the root.
// The empty path is the root.
type Path []int

// Child returns a new path extended by child index i.
// The receiver is never modified.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Depth returns the generation of the addressed node (root = 0).
func (p Path) Depth() int { return len(p) }

// String formats the path as "$", "$.children[0]", "$.children[0].children[3]".
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, i := range p {
		b.WriteString(".children[")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("]")
	}
	return b.String()
}

// Resolve returns the node addressed by p under root.
func (p Path) Resolve(root *Node) (*Node, bool) {
	n := root
	for _, i := range p {
		if n == nil || i < 0 || i >= len(n.Children) {
			return nil, false
		}
		n = n.Children[i]
	}
	return n, n != nil
}

package sink

import (
	"encoding/json"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// LayoutFormatVersion is written to every layout file.
const LayoutFormatVersion = 1

type jsonLayout struct {
	Version       int            `json:"version"`
	Canvas        layout.Canvas  `json:"canvas"`
	Margins       layout.Margins `json:"margins"`
	Bounds        layout.Bounds  `json:"bounds"`
	NodeCount     int            `json:"node_count"`
	MaxGeneration int            `json:"max_generation"`
	Root          *jsonNode      `json:"root"`
}

type jsonNode struct {
	Name       string      `json:"name"`
	Summary    string      `json:"summary,omitempty"`
	Link       string      `json:"link,omitempty"`
	Generation int         `json:"generation"`
	Depth      float64     `json:"depth"`
	Breadth    float64     `json:"breadth"`
	Children   []*jsonNode `json:"children,omitempty"`
}

// RenderLayoutJSON serializes a computed layout so it can be cached or
// rendered later without recomputing.
func RenderLayoutJSON(l *layout.Layout) ([]byte, error) {
	if l == nil || l.Root == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "nil layout")
	}
	out := jsonLayout{
		Version:       LayoutFormatVersion,
		Canvas:        l.Canvas,
		Margins:       l.Margins,
		Bounds:        l.Bounds,
		NodeCount:     l.NodeCount,
		MaxGeneration: l.MaxGeneration,
		Root:          toJSONNode(l.Root),
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONNode(n *layout.PositionedNode) *jsonNode {
	j := &jsonNode{
		Name:       n.Node.Name,
		Summary:    n.Node.Summary,
		Link:       n.Node.Link,
		Generation: n.Generation,
		Depth:      n.DepthCoord,
		Breadth:    n.BreadthCoord,
	}
	for _, c := range n.Children {
		j.Children = append(j.Children, toJSONNode(c))
	}
	return j
}

// ReadLayoutJSON restores a layout written by [RenderLayoutJSON]. The
// positioned nodes get a freshly built tree.
func ReadLayoutJSON(data []byte) (*layout.Layout, error) {
	var in jsonLayout
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidJSON, err, "invalid layout file")
	}
	if in.Version != LayoutFormatVersion {
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported layout version %d", in.Version)
	}
	if in.Root == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "layout has no root")
	}

	l := &layout.Layout{
		Canvas:        in.Canvas,
		Margins:       in.Margins,
		Bounds:        in.Bounds,
		MaxGeneration: in.MaxGeneration,
	}
	root, err := fromJSONNode(in.Root, tree.Path{}, nil, &l.NodeCount)
	if err != nil {
		return nil, err
	}
	l.Root = root
	if in.NodeCount != 0 && in.NodeCount != l.NodeCount {
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "layout declares %d nodes, found %d", in.NodeCount, l.NodeCount)
	}
	return l, nil
}

func fromJSONNode(j *jsonNode, p tree.Path, parent *layout.Point, count *int) (*layout.PositionedNode, error) {
	if j == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "null node at %s", p)
	}
	*count++
	n := &layout.PositionedNode{
		Node:         &tree.Node{Name: j.Name, Summary: j.Summary, Link: j.Link},
		Path:         p,
		Generation:   j.Generation,
		DepthCoord:   j.Depth,
		BreadthCoord: j.Breadth,
		Parent:       parent,
	}
	pt := n.Point()
	for i, cj := range j.Children {
		c, err := fromJSONNode(cj, p.Child(i), &pt, count)
		if err != nil {
			return nil, err
		}
		if c.Generation != n.Generation+1 {
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "node at %s has generation %d under %d", c.Path, c.Generation, n.Generation)
		}
		n.Children = append(n.Children, c)
		n.Node.Children = append(n.Node.Children, c.Node)
	}
	return n, nil
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// node mirrors the input contract. Empty optional fields are omitted so
// an exported tree reads back identically.
type node struct {
	Name     string  `json:"name" yaml:"name"`
	Summary  string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Link     string  `json:"link,omitempty" yaml:"link,omitempty"`
	Children []*node `json:"children,omitempty" yaml:"children,omitempty"`
}

func fromTree(n *tree.Node) *node {
	out := &node{Name: n.Name, Summary: n.Summary, Link: n.Link}
	for _, c := range n.Children {
		out.Children = append(out.Children, fromTree(c))
	}
	return out
}

// WriteTree encodes root in the given format.
func WriteTree(root *tree.Node, w io.Writer, f Format) error {
	if root == nil {
		return apperr.New(apperr.ErrCodeInvalidInput, "nil tree")
	}
	out := fromTree(root)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return apperr.New(apperr.ErrCodeInvalidFormat, "unknown output format %q", f)
	}
}

// ExportTree writes root to path, choosing the format from the extension.
func ExportTree(root *tree.Node, path string) error {
	if err := apperr.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTree(root, f, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

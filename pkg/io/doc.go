// Package io reads and writes mind map input documents.
//
// # Overview
//
// A mind map is a single JSON or YAML object. Each node has a required
// string "name", optional "summary" and "link" strings, and an optional
// "children" array of nodes:
//
//	{
//	  "name": "Root",
//	  "children": [
//	    {"name": "A", "summary": "s1"},
//	    {"name": "B", "link": "https://example.com", "summary": "s2"}
//	  ]
//	}
//
// YAML documents use the same fields.
//
// # Import
//
// [ReadValue] decodes a document into plain values, and [ReadTree]
// validates it into a [tree.Node]. [ImportTree] does both for a file,
// picking the format from the extension (.yaml and .yml are YAML,
// everything else JSON):
//
//	root, err := io.ImportTree("plan.json")
//
// Documents that fail to decode return an error with code INVALID_JSON
// whose user message is [InvalidJSONMessage]. Documents that decode but do
// not satisfy the node contract return a [tree.ShapeError] naming the
// offending node.
//
// # Export
//
// [WriteTree] and [ExportTree] write a tree back in either format. Absent
// optional fields are omitted, so reading the output yields an equal tree.
//
// Layout files are handled by the sink package, which stores computed
// coordinates alongside the tree.
//
// [tree.Node]: github.com/matzehuels/mindtree/pkg/mindmap/tree.Node
// [tree.ShapeError]: github.com/matzehuels/mindtree/pkg/mindmap/tree.ShapeError
package io

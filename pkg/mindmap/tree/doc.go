// Package tree converts decoded JSON (or YAML) values into the strictly owned
// node hierarchy that the rest of the mind map engine lays out and draws.
//
// # Overview
//
// A mind map document is a single object describing the root node:
//
//	{
//	  "name": "Root",
//	  "summary": "optional tooltip text",
//	  "link": "https://example.com",
//	  "children": [ {"name": "A"}, {"name": "B"} ]
//	}
//
// Only "name" is required. "summary" and "link" are optional strings and
// "children" is an optional array of objects following the same contract.
// An absent "children" field and an empty array both describe a leaf.
// Unknown fields are ignored.
//
// # Building
//
// [Build] takes the value produced by encoding/json (or gopkg.in/yaml.v3)
// and returns the root [Node]:
//
//	var v any
//	_ = json.Unmarshal(data, &v)
//	root, err := tree.Build(v)
//
// Build is a pure function. It never returns a partially built tree: any
// violation anywhere in the hierarchy yields a [*ShapeError] whose [Path]
// identifies the offending location, for example "$.children[1].children[0]".
//
// # Ownership
//
// The root owns every descendant. Nodes carry no parent pointers and the
// builder always allocates fresh nodes, so a value that appears twice in the
// source produces two independent subtrees rather than aliases.
package tree

package tree

import (
	"fmt"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
)

// Field names recognised in node objects.
const (
	FieldName     = "name"
	FieldSummary  = "summary"
	FieldLink     = "link"
	FieldChildren = "children"
)

// MaxDepth bounds the nesting of the input hierarchy. Deeper documents are
// rejected with a [*ShapeError].
const MaxDepth = 512

// ShapeError reports that a value does not satisfy the node contract.
// Path identifies the offending node, Reason what is wrong with it.
type ShapeError struct {
	Path   Path
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid node at %s: %s", e.Path, e.Reason)
}

// Unwrap exposes the INVALID_SHAPE code to apperr.Is.
func (e *ShapeError) Unwrap() error {
	return apperr.New(apperr.ErrCodeInvalidShape, "invalid node at %s: %s", e.Path, e.Reason)
}

// Build converts a decoded JSON or YAML value into a node tree.
//
// value must be an object with a string "name". Optional "summary" and "link"
// must be strings, and optional "children" must be an array of values that
// recursively satisfy the same contract. A null optional field counts as
// absent. Build returns a [*ShapeError] for the first violation found in
// pre-order; no partial tree is returned.
func Build(value any) (*Node, error) {
	return build(value, Path{})
}

func build(value any, p Path) (*Node, error) {
	if p.Depth() > MaxDepth {
		return nil, &ShapeError{Path: p, Reason: fmt.Sprintf("nesting deeper than %d levels", MaxDepth)}
	}

	obj, err := asObject(value, p)
	if err != nil {
		return nil, err
	}

	rawName, ok := obj[FieldName]
	if !ok || rawName == nil {
		return nil, &ShapeError{Path: p, Reason: `missing required field "name"`}
	}
	name, ok := rawName.(string)
	if !ok {
		return nil, &ShapeError{Path: p, Reason: fmt.Sprintf(`field "name" must be a string, got %s`, typeName(rawName))}
	}

	n := &Node{Name: name}
	if n.Summary, err = optionalString(obj, FieldSummary, p); err != nil {
		return nil, err
	}
	if n.Link, err = optionalString(obj, FieldLink, p); err != nil {
		return nil, err
	}

	rawChildren, ok := obj[FieldChildren]
	if !ok || rawChildren == nil {
		return n, nil
	}
	items, ok := rawChildren.([]any)
	if !ok {
		return nil, &ShapeError{Path: p, Reason: fmt.Sprintf(`field "children" must be an array, got %s`, typeName(rawChildren))}
	}
	if len(items) == 0 {
		return n, nil
	}

	n.Children = make([]*Node, 0, len(items))
	for i, item := range items {
		child, err := build(item, p.Child(i))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// asObject accepts both map[string]any (encoding/json, yaml.v3) and
// map[any]any with string keys (yaml.v3 with non-string-keyed documents).
func asObject(value any, p Path) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, &ShapeError{Path: p, Reason: fmt.Sprintf("object keys must be strings, got %s", typeName(k))}
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, &ShapeError{Path: p, Reason: fmt.Sprintf("expected an object, got %s", typeName(value))}
	}
}

func optionalString(obj map[string]any, field string, p Path) (string, error) {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ShapeError{Path: p, Reason: fmt.Sprintf("field %q must be a string, got %s", field, typeName(raw))}
	}
	return s, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, uint64, int32, uint32:
		return "number"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

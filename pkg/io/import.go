package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

// InvalidJSONMessage is shown to users when input cannot be decoded.
const InvalidJSONMessage = "Invalid JSON data. Please check your input."

// MaxInputSize bounds how much input is read, in bytes.
const MaxInputSize = 16 << 20

// Format is an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidFormat, "unknown input format %q", s)
}

// ReadValue decodes one document from r into plain Go values: objects
// become maps, arrays slices. The result is what [tree.Build] accepts.
//
// Malformed input fails with code INVALID_JSON and [InvalidJSONMessage];
// the decoder's complaint is kept as the cause. ReadValue does not close r.
func ReadValue(r io.Reader, f Format) (any, error) {
	data, err := ReadInput(r)
	if err != nil {
		return nil, err
	}
	return DecodeValue(data, f)
}

// ReadInput reads at most [MaxInputSize] bytes from r.
func ReadInput(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxInputSize {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "input exceeds %d bytes", MaxInputSize)
	}
	return data, nil
}

// ReadFile reads the input at path and picks its format from the
// extension. "-" reads standard input as JSON.
func ReadFile(path string) ([]byte, Format, error) {
	if path == "-" {
		data, err := ReadInput(os.Stdin)
		return data, FormatJSON, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	data, err := ReadInput(f)
	return data, FormatFromPath(path), err
}

// DecodeValue is [ReadValue] for a byte slice.
func DecodeValue(data []byte, f Format) (any, error) {
	var v any
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
		if err == nil && v == nil {
			err = errors.New("empty document")
		}
	case FormatJSON, "":
		err = json.Unmarshal(data, &v)
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unknown input format %q", f)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidJSON, err, InvalidJSONMessage)
	}
	return v, nil
}

// ReadTree decodes and validates a mind map from r.
func ReadTree(r io.Reader, f Format) (*tree.Node, error) {
	v, err := ReadValue(r, f)
	if err != nil {
		return nil, err
	}
	return tree.Build(v)
}

// ImportTree reads the mind map stored at path, choosing the format from
// the extension.
func ImportTree(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	root, err := ReadTree(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

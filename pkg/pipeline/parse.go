package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/mindtree/pkg/cache"
	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// Parse decodes and validates input. source names the input in hook
// events, such as a file path or "request".
func Parse(ctx context.Context, input []byte, format mtio.Format, source string) (*tree.Node, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, source)
	start := time.Now()

	v, err := mtio.DecodeValue(input, format)
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	root, err := tree.Build(v)
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, source, root.Count(), time.Since(start), nil)
	return root, nil
}

// TreeHash hashes the canonical JSON form of root, so inputs that differ
// only in formatting or encoding share cache entries.
func TreeHash(root *tree.Node) (string, error) {
	var buf bytes.Buffer
	if err := mtio.WriteTree(root, &buf, mtio.FormatJSON); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

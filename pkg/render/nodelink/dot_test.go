package nodelink

import (
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

func sampleLayout(t *testing.T) *layout.Layout {
	t.Helper()
	root, err := tree.Build(map[string]any{
		"name": "Root",
		"children": []any{
			map[string]any{"name": "A", "summary": "first \"quoted\""},
			map[string]any{"name": "B", "link": "https://example.com/b", "children": []any{
				map[string]any{"name": "B1"},
			}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(root, layout.Canvas{Width: 960, Height: 600}, layout.DefaultMargins())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{})

	for _, want := range []string{
		"digraph mindmap {",
		"rankdir=LR;",
		`"n" [label="Root", penwidth=2];`,
		`"n0" [label="A", tooltip="first \"quoted\""];`,
		`URL="https://example.com/b", target="_blank"`,
		`"n" -> "n0";`,
		`"n1" -> "n1_0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned export should not carry positions")
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestToDOTPinned(t *testing.T) {
	l := sampleLayout(t)
	dot := ToDOT(l, Options{Pinned: true})

	x, y := l.Screen(l.Root.Point())
	_, h := l.ContentSize()
	want := fmt.Sprintf(`pos="%.1f,%.1f!"`, x, h-y)
	if !strings.Contains(dot, want) {
		t.Errorf("root position %s missing:\n%s", want, dot)
	}
	if got := strings.Count(dot, "pos="); got != 4 {
		t.Errorf("pinned nodes = %d, want 4", got)
	}
}

func TestToDOTParses(t *testing.T) {
	for _, pinned := range []bool{false, true} {
		g, err := graphviz.ParseBytes([]byte(ToDOT(sampleLayout(t), Options{Pinned: pinned})))
		if err != nil {
			t.Fatalf("pinned=%v: graphviz rejected the export: %v", pinned, err)
		}
		g.Close()
	}
}

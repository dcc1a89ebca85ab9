package engine

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/interact"
	"github.com/matzehuels/mindtree/pkg/mindmap/layout"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
	"github.com/matzehuels/mindtree/pkg/mindmap/tree"
)

const exampleInput = `{"name":"Root","children":[{"name":"A","summary":"s1"},{"name":"B","link":"https://x.test","summary":"s2"}]}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSubmitExample(t *testing.T) {
	rec := scene.NewRecorder(960, 440)
	nav := &interact.RecordingNavigator{}
	e := New(rec, nav, DefaultOptions())

	c, err := e.Submit(decode(t, exampleInput))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if e.Current() != c {
		t.Error("Current does not return the new cycle")
	}
	if c.Tree.Count() != 3 {
		t.Errorf("tree has %d nodes, want 3", c.Tree.Count())
	}
	a, b := c.Layout.Root.Children[0], c.Layout.Root.Children[1]
	if a.Generation != 1 || b.Generation != 1 || !(a.BreadthCoord < b.BreadthCoord) {
		t.Errorf("children at gen %d/%d breadth %v/%v", a.Generation, b.Generation, a.BreadthCoord, b.BreadthCoord)
	}
	st := c.Handle.Stats()
	if st.Connectors != 2 || st.Icons != 1 {
		t.Errorf("stats = %+v, want 2 connectors and 1 icon", st)
	}
	if rec.Scene() != c.Handle.Scene {
		t.Error("surface does not show the cycle's scene")
	}

	r, _ := c.Handle.Region(tree.Path{1})
	e.Dispatch(interact.Event{Kind: interact.Click, X: r.Center.X, Y: r.Center.Y})
	if got := nav.Opened(); !slices.Equal(got, []string{"https://x.test"}) {
		t.Errorf("opened %v", got)
	}
}

func TestSubmitTearsDownPreviousCycle(t *testing.T) {
	rec := scene.NewRecorder(960, 440)
	nav := &interact.RecordingNavigator{}
	e := New(rec, nav, DefaultOptions())

	first, err := e.Submit(decode(t, exampleInput))
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Submit(decode(t, exampleInput))
	if err != nil {
		t.Fatal(err)
	}

	if !first.Controller.Detached() {
		t.Error("previous controller still attached")
	}
	if second.Controller.Detached() {
		t.Error("new controller detached")
	}
	if first.Handle.ID == second.Handle.ID {
		t.Error("cycles share a handle ID")
	}
	if first.Handle.Stats() != second.Handle.Stats() {
		t.Errorf("rebuild changed element counts: %+v vs %+v", first.Handle.Stats(), second.Handle.Stats())
	}
	for i := range first.Handle.Regions {
		if first.Handle.Regions[i].Center != second.Handle.Regions[i].Center {
			t.Errorf("region %d moved between identical submits", i)
		}
	}

	r, _ := first.Handle.Region(tree.Path{1})
	first.Controller.Dispatch(interact.Event{Kind: interact.Click, X: r.Center.X, Y: r.Center.Y})
	if len(nav.Opened()) != 0 {
		t.Error("stale controller navigated")
	}
}

func TestSubmitFailuresLeaveNothingDrawn(t *testing.T) {
	tests := []struct {
		name  string
		w, h  float64
		input string
		code  apperr.Code
	}{
		{"MissingName", 960, 440, `{"children":[]}`, apperr.ErrCodeInvalidShape},
		{"ZeroAreaSurface", 0, 0, exampleInput, apperr.ErrCodeInvalidCanvas},
		{"NarrowSurface", 200, 440, exampleInput, apperr.ErrCodeInvalidCanvas},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := scene.NewRecorder(960, 440)
			e := New(rec, nil, DefaultOptions())
			if _, err := e.Submit(decode(t, exampleInput)); err != nil {
				t.Fatal(err)
			}

			rec.Width, rec.Height = tt.w, tt.h
			c, err := e.Submit(decode(t, tt.input))
			if err == nil {
				t.Fatalf("Submit succeeded with %+v", c)
			}
			if !apperr.Is(err, tt.code) {
				t.Errorf("error %v does not carry %s", err, tt.code)
			}
			if e.Current() != nil {
				t.Error("failed submit left a current cycle")
			}
			if rec.Scene() != nil {
				t.Error("failed submit left a scene on the surface")
			}
		})
	}
}

func TestShapeErrorReferencesRoot(t *testing.T) {
	e := New(scene.NewRecorder(960, 440), nil, DefaultOptions())
	_, err := e.Submit(decode(t, `{"children":[]}`))
	var se *tree.ShapeError
	if !errors.As(err, &se) || se.Path.String() != "$" {
		t.Errorf("got %v, want ShapeError at $", err)
	}
}

func TestDispatchWithoutCycle(t *testing.T) {
	e := New(scene.NewRecorder(960, 440), nil, DefaultOptions())
	e.Dispatch(interact.Event{Kind: interact.Click})
	e.Teardown()
	if e.Current() != nil {
		t.Error("Current not nil")
	}
}

func TestOptionsReachStages(t *testing.T) {
	rec := scene.NewRecorder(960, 440)
	opts := DefaultOptions()
	opts.Margins = layout.Margins{Top: 0, Right: 10, Bottom: 0, Left: 10}
	opts.Interact = []interact.Option{interact.WithScaleExtent(1, 8)}
	e := New(rec, nil, opts)

	c, err := e.SubmitTree(&tree.Node{Name: "solo"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Layout.Margins != opts.Margins {
		t.Errorf("margins = %+v", c.Layout.Margins)
	}
	if got := c.Controller.Options().MaxScale; got != 8 {
		t.Errorf("MaxScale = %v, want 8", got)
	}
	if _, err := e.SubmitTree(nil); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("nil tree: %v", err)
	}
}

package tree

import (
	"testing"
)

func sample() *Node {
	return &Node{
		Name: "R",
		Children: []*Node{
			{Name: "A", Children: []*Node{{Name: "A1"}, {Name: "A2"}}},
			{Name: "B", Link: "https://b.test"},
		},
	}
}

func TestNodeMetrics(t *testing.T) {
	n := sample()
	if got := n.Count(); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
	if got := n.Height(); got != 2 {
		t.Errorf("Height = %d, want 2", got)
	}
	if got := (&Node{Name: "x"}).Height(); got != 0 {
		t.Errorf("leaf Height = %d, want 0", got)
	}
	if !n.Children[1].HasLink() || n.Children[0].HasLink() {
		t.Error("HasLink mismatch")
	}
}

func TestWalkPreOrder(t *testing.T) {
	var names, paths []string
	sample().Walk(func(p Path, n *Node) bool {
		names = append(names, n.Name)
		paths = append(paths, p.String())
		return true
	})

	wantNames := []string{"R", "A", "A1", "A2", "B"}
	wantPaths := []string{"$", "$.children[0]", "$.children[0].children[0]", "$.children[0].children[1]", "$.children[1]"}
	for i := range wantNames {
		if names[i] != wantNames[i] || paths[i] != wantPaths[i] {
			t.Errorf("visit %d = (%s, %s), want (%s, %s)", i, names[i], paths[i], wantNames[i], wantPaths[i])
		}
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	count := 0
	sample().Walk(func(p Path, n *Node) bool {
		count++
		return n.Name != "A"
	})
	if count != 3 {
		t.Errorf("visited %d nodes, want 3", count)
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	a := base.Child(1)
	b := base.Child(2)
	if a[1] != 1 || b[1] != 2 {
		t.Errorf("Child aliased backing storage: a=%v b=%v", a, b)
	}
}

func TestPathResolve(t *testing.T) {
	root := sample()
	tests := []struct {
		path Path
		want string
		ok   bool
	}{
		{Path{}, "R", true},
		{Path{0, 1}, "A2", true},
		{Path{1}, "B", true},
		{Path{2}, "", false},
		{Path{1, 0}, "", false},
		{Path{-1}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path.String(), func(t *testing.T) {
			n, ok := tt.path.Resolve(root)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && n.Name != tt.want {
				t.Errorf("resolved %q, want %q", n.Name, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := sample()
	cp := orig.Clone()
	cp.Children[0].Children[0].Name = "changed"
	if orig.Children[0].Children[0].Name != "A1" {
		t.Error("Clone shares nodes with the original")
	}
	if cp.Count() != orig.Count() {
		t.Errorf("Clone Count = %d, want %d", cp.Count(), orig.Count())
	}
}

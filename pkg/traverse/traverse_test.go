package traverse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// adjacency is a small string graph for tests.
type adjacency map[string][]string

func (a adjacency) children(n string) []string { return a[n] }

var tree = adjacency{
	"r": {"x", "y"},
	"x": {"a", "b"},
	"y": {"c", "d"},
	"a": nil,
	"b": nil,
	"c": nil,
	"d": nil,
}

// diamond has a node (h) with two parents.
var diamond = adjacency{
	"r": {"u", "v"},
	"u": {"h", "a"},
	"v": {"h", "b"},
	"h": {"c"},
}

func TestPostOrder(t *testing.T) {
	tests := []struct {
		name  string
		graph adjacency
		want  []string
	}{
		{"tree", tree, []string{"a", "b", "x", "c", "d", "y", "r"}},
		{"diamond visits shared node once", diamond, []string{"c", "h", "a", "u", "b", "v", "r"}},
		{"single node", adjacency{}, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collect("r", tt.graph.children)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("PostOrder mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreOrder(t *testing.T) {
	var got []string
	PreOrder("r", diamond.children, func(n string) { got = append(got, n) })
	want := []string{"r", "u", "h", "c", "a", "v", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PreOrder mismatch (-want +got):\n%s", diff)
	}
}

func TestTopological(t *testing.T) {
	order, err := Topological("r", diamond.children)
	if err != nil {
		t.Fatalf("Topological() error = %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for parent, kids := range diamond {
		for _, c := range kids {
			if pos[parent] >= pos[c] {
				t.Errorf("%s (pos %d) should precede %s (pos %d)", parent, pos[parent], c, pos[c])
			}
		}
	}
	if len(order) != 7 {
		t.Errorf("len(order) = %d, want 7", len(order))
	}
}

func TestTopologicalCycle(t *testing.T) {
	cyclic := adjacency{
		"r": {"a"},
		"a": {"b"},
		"b": {"r"},
	}
	if _, err := Topological("r", cyclic.children); !errors.Is(err, ErrCycle) {
		t.Errorf("Topological() error = %v, want ErrCycle", err)
	}
}

func TestLeaves(t *testing.T) {
	got := Leaves("r", diamond.children)
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Leaves mismatch (-want +got):\n%s", diff)
	}
}

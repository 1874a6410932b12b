package phylo

import (
	"errors"
	"testing"
)

// buildNetwork creates r -> {u, v}, u -> {h, a}, v -> {h, b}, h -> c.
func buildNetwork(t *testing.T) (*Network, map[string]*Node) {
	t.Helper()
	net := New()
	nodes := map[string]*Node{}
	for _, l := range []string{"r", "u", "v", "h", "a", "b", "c"} {
		nodes[l] = net.AddNode(l)
	}
	edges := []struct {
		from, to string
		typ      EdgeType
	}{
		{"r", "u", EdgeTree},
		{"r", "v", EdgeTree},
		{"u", "h", EdgeCombining},
		{"u", "a", EdgeTree},
		{"v", "h", EdgeCombining},
		{"v", "b", EdgeTree},
		{"h", "c", EdgeTree},
	}
	for _, e := range edges {
		if _, err := net.AddEdge(nodes[e.from], nodes[e.to], 1, e.typ); err != nil {
			t.Fatalf("AddEdge(%s, %s) error = %v", e.from, e.to, err)
		}
	}
	return net, nodes
}

func TestAddEdgeErrors(t *testing.T) {
	net := New()
	a := net.AddNode("a")
	b := net.AddNode("b")
	foreign := New().AddNode("x")

	tests := []struct {
		name     string
		src, tgt *Node
		weight   float64
		want     error
	}{
		{"unknown source", foreign, b, 1, ErrUnknownSourceNode},
		{"unknown target", a, foreign, 1, ErrUnknownTargetNode},
		{"self loop", a, a, 1, ErrSelfLoop},
		{"negative weight", a, b, -1, ErrNegativeWeight},
		{"valid", a, b, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := net.AddEdge(tt.src, tt.tgt, tt.weight, EdgeTree)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNetworkQueries(t *testing.T) {
	net, n := buildNetwork(t)

	if got := net.Root(); got != n["r"] {
		t.Errorf("Root() = %v, want r", got)
	}
	if !net.IsReticulate(n["h"]) {
		t.Error("h should be reticulate")
	}
	if net.IsReticulate(n["a"]) {
		t.Error("a should not be reticulate")
	}
	if !net.IsReticulated() {
		t.Error("network should be reticulated")
	}
	if got := len(net.Leaves()); got != 3 {
		t.Errorf("len(Leaves()) = %d, want 3", got)
	}
	if got := net.Children(n["u"]); len(got) != 2 || got[0] != n["h"] || got[1] != n["a"] {
		t.Errorf("Children(u) = %v, want [h a]", got)
	}
	if got := net.Parents(n["h"]); len(got) != 2 || got[0] != n["u"] || got[1] != n["v"] {
		t.Errorf("Parents(h) = %v, want [u v]", got)
	}
	if v, ok := net.NodeByLabel("c"); !ok || v != n["c"] {
		t.Errorf("NodeByLabel(c) = %v, %v", v, ok)
	}
	if net.NodeCount() != 7 || net.EdgeCount() != 7 {
		t.Errorf("counts = %d/%d, want 7/7", net.NodeCount(), net.EdgeCount())
	}
}

func TestTransferMakesNetworkReticulated(t *testing.T) {
	net := New()
	r := net.AddNode("")
	a := net.AddNode("a")
	b := net.AddNode("b")
	net.AddEdge(r, a, 1, EdgeTree)
	net.AddEdge(a, b, 0, EdgeTransfer)
	if !net.IsReticulated() {
		t.Error("transfer edge should make the network reticulated")
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		net, _ := buildNetwork(t)
		if err := net.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if err := New().Validate(); !errors.Is(err, ErrNoRoot) {
			t.Errorf("Validate() error = %v, want ErrNoRoot", err)
		}
	})

	t.Run("two roots", func(t *testing.T) {
		net := New()
		net.AddNode("a")
		net.AddNode("b")
		if err := net.Validate(); !errors.Is(err, ErrNoRoot) {
			t.Errorf("Validate() error = %v, want ErrNoRoot", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		net := New()
		r := net.AddNode("r")
		a := net.AddNode("a")
		b := net.AddNode("b")
		net.AddEdge(r, a, 1, EdgeTree)
		net.AddEdge(a, b, 1, EdgeTree)
		net.AddEdge(b, a, 1, EdgeTree)
		if err := net.Validate(); !errors.Is(err, ErrGraphHasCycle) {
			t.Errorf("Validate() error = %v, want ErrGraphHasCycle", err)
		}
	})

	t.Run("unreachable with explicit root", func(t *testing.T) {
		net := New()
		r := net.AddNode("r")
		a := net.AddNode("a")
		net.AddNode("stray")
		net.AddEdge(r, a, 1, EdgeTree)
		net.SetRoot(r)
		if err := net.Validate(); !errors.Is(err, ErrUnreachable) {
			t.Errorf("Validate() error = %v, want ErrUnreachable", err)
		}
	})
}

func TestEdgeTypeString(t *testing.T) {
	tests := []struct {
		typ  EdgeType
		want string
	}{
		{EdgeTree, "tree"},
		{EdgeCombining, "combining"},
		{EdgeTransfer, "transfer"},
		{EdgeType(9), "EdgeType(9)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNodeString(t *testing.T) {
	net := New()
	unlabeled := net.AddNode("")
	labeled := net.AddNode("a")
	if unlabeled.String() != "#0" {
		t.Errorf("String() = %q, want #0", unlabeled.String())
	}
	if labeled.String() != "a" {
		t.Errorf("String() = %q, want a", labeled.String())
	}
}

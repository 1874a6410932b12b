package layout

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/newick"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// labels maps the LSA children of every labelled node to their labels.
func labels(lsa map[*phylo.Node][]*phylo.Node) map[string][]string {
	out := make(map[string][]string)
	for v, kids := range lsa {
		if v.Label == "" {
			continue
		}
		names := []string{}
		for _, k := range kids {
			names = append(names, k.String())
		}
		out[v.Label] = names
	}
	return out
}

func lsaOf(t *testing.T, input string) map[*phylo.Node][]*phylo.Node {
	t.Helper()
	net, err := newick.Parse(input)
	require.NoError(t, err)
	lsa := make(map[*phylo.Node][]*phylo.Node)
	require.NoError(t, ComputeLSAChildren(FromNetwork(net), lsa))
	require.Len(t, lsa, net.NodeCount())
	return lsa
}

func TestLSATree(t *testing.T) {
	got := labels(lsaOf(t, "((a,b)x,(c,(d,e)z)y)r;"))
	want := map[string][]string{
		"r": {"x", "y"},
		"x": {"a", "b"},
		"y": {"c", "z"},
		"z": {"d", "e"},
		"a": {}, "b": {}, "c": {}, "d": {}, "e": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LSA children mismatch (-want +got):\n%s", diff)
	}
}

func TestLSAHybrid(t *testing.T) {
	got := labels(lsaOf(t, "((a,(b)h#H1)p,(#H1,c)q)r;"))
	want := map[string][]string{
		"r": {"p", "h", "q"},
		"p": {"a"},
		"q": {"c"},
		"h": {"b"},
		"a": {}, "b": {}, "c": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LSA children mismatch (-want +got):\n%s", diff)
	}
}

func TestLSATransferFollowsTreeParent(t *testing.T) {
	got := labels(lsaOf(t, "((a,(b)t#LGT1)p,(#LGT1,c)q)r;"))
	assert.Equal(t, []string{"a", "t"}, got["p"])
	assert.Equal(t, []string{"c"}, got["q"])
	assert.Equal(t, []string{"p", "q"}, got["r"])
}

func TestLSANestedHybrids(t *testing.T) {
	// Both hybrids have parents p and q, so their LSA is r.
	got := labels(lsaOf(t, "(((a)h2#H2,(b)h1#H1)p,(#H1,#H2)q)r;"))
	assert.ElementsMatch(t, []string{"p", "h1", "q", "h2"}, got["r"])
	assert.Empty(t, got["p"])
}

func TestLSAReuse(t *testing.T) {
	net, err := newick.Parse("(a,b)r;")
	require.NoError(t, err)
	r, _ := net.NodeByLabel("r")
	a, _ := net.NodeByLabel("a")
	b, _ := net.NodeByLabel("b")

	lsa := map[*phylo.Node][]*phylo.Node{r: {b, a}, a: {}, b: {}}
	require.NoError(t, ComputeLSAChildren(FromNetwork(net), lsa))
	assert.Equal(t, []*phylo.Node{b, a}, lsa[r], "complete map is reused")

	partial := map[*phylo.Node][]*phylo.Node{r: {b}}
	require.NoError(t, ComputeLSAChildren(FromNetwork(net), partial))
	assert.Equal(t, []*phylo.Node{a, b}, partial[r], "partial map is recomputed")
}

type edge struct{ from, to string }

func stringGraph(root string, nodes []string, edges []edge) *Graph[string, edge] {
	return &Graph[string, edge]{
		Root:   root,
		Nodes:  nodes,
		Edges:  edges,
		Source: func(e edge) string { return e.from },
		Target: func(e edge) string { return e.to },
	}
}

func TestLSAPreconditions(t *testing.T) {
	tests := []struct {
		name string
		g    *Graph[string, edge]
		code errors.Code
	}{
		{
			name: "cycle",
			g:    stringGraph("r", []string{"r", "a", "b"}, []edge{{"r", "a"}, {"a", "b"}, {"b", "a"}}),
			code: errors.ErrCodeNotDAG,
		},
		{
			name: "edge into root",
			g:    stringGraph("r", []string{"r", "a"}, []edge{{"r", "a"}, {"a", "r"}}),
			code: errors.ErrCodeNotDAG,
		},
		{
			name: "unreachable",
			g:    stringGraph("r", []string{"r", "a", "x"}, []edge{{"r", "a"}}),
			code: errors.ErrCodeUnreachable,
		},
		{
			name: "unknown root",
			g:    stringGraph("q", []string{"r", "a"}, []edge{{"r", "a"}}),
			code: errors.ErrCodeNoRoot,
		},
		{
			name: "foreign endpoint",
			g:    stringGraph("r", []string{"r", "a"}, []edge{{"r", "z"}}),
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "missing accessors",
			g:    &Graph[string, edge]{Root: "r", Nodes: []string{"r"}},
			code: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ComputeLSAChildren(tt.g, map[string][]string{})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))

			err = Apply(tt.g, Options{}, map[string][]string{}, map[string]float64{}, map[string]geom.Point{})
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

// randomTree builds a random rooted tree with branch lengths in [0, 2).
func randomTree(seed uint64) *phylo.Network {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	net := phylo.New()
	nodes := []*phylo.Node{net.AddNode("")}
	n := 2 + rng.IntN(30)
	for range n - 1 {
		v := net.AddNode("")
		parent := nodes[rng.IntN(len(nodes))]
		if _, err := net.AddEdge(parent, v, 2*rng.Float64(), phylo.EdgeTree); err != nil {
			panic(err)
		}
		nodes = append(nodes, v)
	}
	return net
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("tree LSA children equal literal children", prop.ForAll(
		func(seed uint64) bool {
			net := randomTree(seed)
			lsa := make(map[*phylo.Node][]*phylo.Node)
			if err := ComputeLSAChildren(FromNetwork(net), lsa); err != nil {
				return false
			}
			for _, v := range net.Nodes() {
				if !slices.Equal(lsa[v], net.Children(v)) {
					return false
				}
			}
			return len(lsa) == net.NodeCount()
		},
		gen.UInt64(),
	))

	properties.Property("phylogram depth is the sum of ancestor weights", prop.ForAll(
		func(seed uint64) bool {
			net := randomTree(seed)
			points := make(map[*phylo.Node]geom.Point)
			err := Apply(FromNetwork(net), Options{Scaling: ToScale},
				map[*phylo.Node][]*phylo.Node{}, map[*phylo.Node]float64{}, points)
			if err != nil {
				return false
			}
			for _, v := range net.Nodes() {
				var sum float64
				for u := v; len(net.InEdges(u)) > 0; u = net.InEdges(u)[0].Source {
					sum += net.InEdges(u)[0].Weight
				}
				if d := points[v][0] - sum; d > 1e-9 || d < -1e-9 {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.Property("cladogram leaves share one depth", prop.ForAll(
		func(seed uint64) bool {
			net := randomTree(seed)
			points := make(map[*phylo.Node]geom.Point)
			err := Apply(FromNetwork(net), Options{Scaling: EarlyBranching},
				map[*phylo.Node][]*phylo.Node{}, map[*phylo.Node]float64{}, points)
			if err != nil {
				return false
			}
			leaves := net.Leaves()
			for _, leaf := range leaves {
				if points[leaf][0] != points[leaves[0]][0] {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.Property("circular leaf angles increase over one turn", prop.ForAll(
		func(seed uint64) bool {
			net := randomTree(seed)
			lsa := map[*phylo.Node][]*phylo.Node{}
			angles := map[*phylo.Node]float64{}
			err := Apply(FromNetwork(net), Options{Layout: Circular}, lsa, angles, map[*phylo.Node]geom.Point{})
			if err != nil {
				return false
			}
			prev := -1.0
			ok := true
			var walk func(v *phylo.Node)
			walk = func(v *phylo.Node) {
				if len(lsa[v]) == 0 {
					a := angles[v]
					ok = ok && a > prev && a >= 0 && a < geom.FullCircle
					prev = a
				}
				for _, c := range lsa[v] {
					walk(c)
				}
			}
			walk(net.Root())
			return ok
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

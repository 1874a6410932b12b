package layout

import (
	"bytes"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/newick"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

const tol = 1e-9

type result struct {
	net    *phylo.Network
	lsa    map[*phylo.Node][]*phylo.Node
	angles map[*phylo.Node]float64
	points map[*phylo.Node]geom.Point
}

func (r result) node(t *testing.T, label string) *phylo.Node {
	t.Helper()
	v, ok := r.net.NodeByLabel(label)
	require.True(t, ok, "no node %q", label)
	return v
}

func (r result) x(t *testing.T, label string) float64 { return r.points[r.node(t, label)][0] }
func (r result) y(t *testing.T, label string) float64 { return r.points[r.node(t, label)][1] }

func run(t *testing.T, input string, opts Options) result {
	t.Helper()
	net, err := newick.Parse(input)
	require.NoError(t, err)
	r := result{
		net:    net,
		lsa:    make(map[*phylo.Node][]*phylo.Node),
		angles: make(map[*phylo.Node]float64),
		points: make(map[*phylo.Node]geom.Point),
	}
	require.NoError(t, Apply(FromNetwork(net), opts, r.lsa, r.angles, r.points))
	return r
}

func TestPhylogramUnitWeights(t *testing.T) {
	r := run(t, "((a,b),(c,d));", Options{Layout: Rectangular, Scaling: ToScale})

	root := r.net.Root()
	assert.Equal(t, 0.0, r.points[root][0])
	for _, c := range r.net.Children(root) {
		assert.Equal(t, 1.0, r.points[c][0])
	}
	for _, leaf := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, 2.0, r.x(t, leaf), leaf)
	}
	assert.Equal(t, 0.0, r.y(t, "a"))
	assert.Equal(t, 3.0, r.y(t, "d"))
	assert.InDelta(t, 1.5, r.points[root][1], tol)
}

func TestPhylogramSumsWeights(t *testing.T) {
	r := run(t, "((a:1,b:2):0.5,(c:0.25,d)e:3);", Options{Scaling: ToScale})

	assert.InDelta(t, 1.5, r.x(t, "a"), tol)
	assert.InDelta(t, 2.5, r.x(t, "b"), tol)
	assert.InDelta(t, 3.0, r.x(t, "e"), tol)
	assert.InDelta(t, 3.25, r.x(t, "c"), tol)
	assert.InDelta(t, 4.0, r.x(t, "d"), tol)
}

func TestCladogramAlignsLeaves(t *testing.T) {
	r := run(t, "((a:5,(b,c)),(d:0.1,(e,(f,g))));", Options{Scaling: EarlyBranching})

	for _, leaf := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		assert.Equal(t, 4.0, r.x(t, leaf), leaf)
	}
	assert.Equal(t, 0.0, r.points[r.net.Root()][0])
}

func TestAveraging(t *testing.T) {
	child := run(t, "(a,(b,c)bc)r;", Options{Averaging: ChildAverage})
	leaf := run(t, "(a,(b,c)bc)r;", Options{Averaging: LeafAverage})

	assert.InDelta(t, 1.5, child.y(t, "bc"), tol)
	assert.InDelta(t, 0.75, child.y(t, "r"), tol)
	assert.InDelta(t, 1.0, leaf.y(t, "r"), tol)
}

func TestLateBranching(t *testing.T) {
	early := run(t, "((a,b)x,(c,(d,e)z)y)r;", Options{Scaling: EarlyBranching})
	late := run(t, "((a,b)x,(c,(d,e)z)y)r;", Options{Scaling: LateBranching})

	assert.Equal(t, 1.0, early.x(t, "x"))
	assert.Equal(t, 2.0, late.x(t, "x"))
	assert.Equal(t, 2.0, late.x(t, "z"))
	assert.Equal(t, 1.0, late.x(t, "y"))
	assert.Equal(t, 0.0, late.x(t, "r"))
}

func TestModifyToLateBranchingKeepsTransferAncestors(t *testing.T) {
	// n3 donates a transfer edge to t; n3, n2 and the root are exempt.
	net := phylo.New()
	root := net.AddNode("root")
	n1, n2, n3 := net.AddNode("n1"), net.AddNode("n2"), net.AddNode("n3")
	a, b, c, d := net.AddNode("a"), net.AddNode("b"), net.AddNode("c"), net.AddNode("d")
	tgt := net.AddNode("t")
	for _, e := range []struct {
		src, tgt *phylo.Node
		typ      phylo.EdgeType
	}{
		{root, n1, phylo.EdgeTree}, {root, n2, phylo.EdgeTree},
		{n1, a, phylo.EdgeTree}, {n1, tgt, phylo.EdgeTree},
		{n2, n3, phylo.EdgeTree}, {n2, d, phylo.EdgeTree},
		{n3, tgt, phylo.EdgeTransfer}, {n3, c, phylo.EdgeTree},
		{tgt, b, phylo.EdgeTree},
	} {
		_, err := net.AddEdge(e.src, e.tgt, 1, e.typ)
		require.NoError(t, err)
	}

	points := make(map[*phylo.Node]geom.Point)
	for _, v := range net.Nodes() {
		points[v] = geom.Pt(0, float64(v.ID))
	}
	for _, leaf := range []*phylo.Node{a, b, c, d} {
		points[leaf] = geom.Pt(3, float64(leaf.ID))
	}

	require.NoError(t, ModifyToLateBranching(FromNetwork(net), points))

	assert.Equal(t, 2.0, points[tgt][0])
	assert.Equal(t, 1.0, points[n1][0])
	for _, v := range []*phylo.Node{root, n2, n3} {
		assert.Equal(t, 0.0, points[v][0], v.Label)
		assert.Equal(t, float64(v.ID), points[v][1], v.Label)
	}
}

func TestModifyToLateBranchingMissingPoint(t *testing.T) {
	net, err := newick.Parse("(a,b);")
	require.NoError(t, err)
	err = ModifyToLateBranching(FromNetwork(net), map[*phylo.Node]geom.Point{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestCircularLeafAngles(t *testing.T) {
	r := run(t, "((a,b),(c,(d,e)),f);", Options{Layout: Circular, Scaling: EarlyBranching})

	leaves := []string{"a", "b", "c", "d", "e", "f"}
	step := geom.FullCircle / float64(len(leaves))
	prev := -1.0
	for i, label := range leaves {
		angle := r.angles[r.node(t, label)]
		assert.Greater(t, angle, prev, label)
		assert.InDelta(t, float64(i)*step, angle, tol, label)
		assert.Less(t, angle, geom.FullCircle)
		prev = angle

		p := r.points[r.node(t, label)]
		assert.InDelta(t, 3.0, geom.Radius(p), tol, "leaves lie on the outer circle")
	}
	assert.Len(t, r.angles, r.net.NodeCount())
}

func TestRadialEdgeLengths(t *testing.T) {
	r := run(t, "((a:1,b:2):0.5,(c:0.25,d:1)e:3);", Options{Layout: Radial, Scaling: ToScale})

	assert.Equal(t, geom.Origin, r.points[r.net.Root()])
	for _, e := range r.net.Edges() {
		got := geom.Distance(r.points[e.Source], r.points[e.Target])
		assert.InDelta(t, e.Weight, got, tol, "%v -> %v", e.Source, e.Target)
		assert.InDelta(t, r.angles[e.Target], geom.Angle(geom.Add(r.points[e.Target],
			geom.Pt(-r.points[e.Source][0], -r.points[e.Source][1]))), 1e-6)
	}
}

func TestRadialTransferRecipient(t *testing.T) {
	// The donor x lies deeper than the recipient's tree parent y.
	r := run(t, "((a:1,#LGT1:1)x:3,((c:1)#LGT1:1)y:1)r;", Options{Layout: Radial, Scaling: ToScale})

	for _, e := range r.net.Edges() {
		if e.Type == phylo.EdgeTransfer {
			continue
		}
		got := geom.Distance(r.points[e.Source], r.points[e.Target])
		assert.InDelta(t, e.Weight, got, tol, "%v -> %v", e.Source, e.Target)
	}
	assert.NotEqual(t, r.points[r.node(t, "x")], r.points[r.node(t, "c")])
}

func TestRadialHybridHangsOffDeepestParent(t *testing.T) {
	r := run(t, "((a:1,(b:1)h#H1:2)p:1,(#H1:1,c:1)q:1)r;", Options{Layout: Radial, Scaling: ToScale})

	h, p := r.points[r.node(t, "h")], r.points[r.node(t, "p")]
	assert.InDelta(t, 2.0, geom.Distance(p, h), tol)
	assert.InDelta(t, 1.0, geom.Distance(h, r.points[r.node(t, "b")]), tol)
}

func TestCircularNetworkRadii(t *testing.T) {
	r := run(t, "((a:1,(b:1)h#H1:2)p:1,(#H1:1,c:1)q:1)r;", Options{Layout: Circular, Scaling: ToScale})

	want := map[string]float64{"r": 0, "p": 1, "q": 1, "a": 2, "c": 2, "h": 3, "b": 4}
	for label, radius := range want {
		v := r.node(t, label)
		assert.InDelta(t, radius, geom.Radius(r.points[v]), tol, label)
		if radius > 0 {
			assert.InDelta(t, r.angles[v], geom.Angle(r.points[v]), 1e-6, label)
		}
	}
	assert.Len(t, r.angles, r.net.NodeCount())
}

func TestRadialForcesLeafAverage(t *testing.T) {
	r := run(t, "(a,(b,c)bc)r;", Options{Layout: Radial, Averaging: ChildAverage})

	want := make(map[*phylo.Node]float64)
	ComputeAngles(r.net.Root(), r.lsa, LeafAverage, want)
	assert.Equal(t, want, r.angles)
	assert.InDelta(t, geom.FullCircle/3, r.angles[r.node(t, "r")], tol)
}

func TestTriangular(t *testing.T) {
	r := run(t, "((a,b)x,(c,d)y)r;", Options{Layout: Triangular, Scaling: EarlyBranching})

	for i, leaf := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, geom.Pt(1.5, float64(i)), r.points[r.node(t, leaf)], leaf)
	}
	assert.Equal(t, geom.Pt(1, 0.5), r.points[r.node(t, "x")])
	assert.Equal(t, geom.Pt(1, 2.5), r.points[r.node(t, "y")])
	assert.Equal(t, geom.Pt(0, 1.5), r.points[r.node(t, "r")])
	assert.Empty(t, r.angles)
}

func TestTriangularWarnsOnReticulation(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})

	r := run(t, "((a,(b)#H1),(#H1,c));", Options{Layout: Triangular, Logger: logger})
	assert.Contains(t, buf.String(), "triangular layout does not support reticulations")
	assert.Len(t, r.points, r.net.NodeCount())
}

func TestApplyClearsMaps(t *testing.T) {
	net, err := newick.Parse("(a,b);")
	require.NoError(t, err)
	stray := &phylo.Node{Label: "stray"}
	points := map[*phylo.Node]geom.Point{stray: geom.Pt(9, 9)}
	angles := map[*phylo.Node]float64{stray: 1}

	require.NoError(t, Apply(FromNetwork(net), Options{}, map[*phylo.Node][]*phylo.Node{}, angles, points))
	assert.NotContains(t, points, stray)
	assert.Empty(t, angles)
	assert.Len(t, points, 3)
}

func TestApplyInvalidMode(t *testing.T) {
	net, err := newick.Parse("(a,b);")
	require.NoError(t, err)
	tests := []Options{
		{Layout: Layout(9)},
		{Scaling: Scaling(-1)},
		{Averaging: Averaging(4)},
	}
	for _, opts := range tests {
		err := Apply(FromNetwork(net), opts, nil, nil, nil)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidMode), "%+v", opts)
	}
}

func TestApplyHybrid(t *testing.T) {
	r := run(t, "((a,(b)h#H1)p,(#H1,c)q)r;", Options{Scaling: ToScale})

	// h hangs below its deepest parent in depth and below r in the LSA tree.
	assert.Equal(t, 2.0, r.x(t, "h"))
	assert.Equal(t, 3.0, r.x(t, "b"))
	assert.Contains(t, r.lsa[r.node(t, "r")], r.node(t, "h"))
}

func TestApplyOptimizeReticulations(t *testing.T) {
	// The hybrid's parents p and s start on opposite sides of the drawing.
	input := "((a,(b)#H1)p,(c,d)m,(#H1,e)s)r;"
	plain := run(t, input, Options{})

	calls := 0
	var before, after float64
	opt := run(t, input, Options{
		OptimizeReticulations: true,
		OnOptimized: func(b, a float64) {
			calls++
			before, after = b, a
		},
	})
	require.Equal(t, 1, calls)
	assert.InDelta(t, 4.0, before, tol)
	assert.InDelta(t, 2.0, after, tol)

	dist := func(r result) float64 {
		h := r.net.Children(r.node(t, "p"))[1]
		var total float64
		for _, parent := range r.net.Parents(h) {
			total += math.Abs(r.points[parent][1] - r.points[h][1])
		}
		return total
	}
	assert.LessOrEqual(t, dist(opt), dist(plain))
	assert.Len(t, opt.lsa, opt.net.NodeCount())
	assert.Len(t, opt.points, opt.net.NodeCount())
}

func TestParseModes(t *testing.T) {
	l, err := ParseLayout("Radial")
	require.NoError(t, err)
	assert.Equal(t, Radial, l)

	s, err := ParseScaling("late")
	require.NoError(t, err)
	assert.Equal(t, LateBranching, s)

	a, err := ParseAveraging(" leaf ")
	require.NoError(t, err)
	assert.Equal(t, LeafAverage, a)

	_, err = ParseLayout("spiral")
	assert.Error(t, err)

	assert.Equal(t, "to-scale", ToScale.String())
	assert.Equal(t, "Layout(7)", Layout(7).String())
}

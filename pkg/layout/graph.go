package layout

import (
	stderrors "errors"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/phylo"
	"github.com/matzehuels/phylolayout/pkg/traverse"
)

// Graph describes a rooted network through accessor functions.
// Out-edges of a node are taken in the order they appear in Edges.
//
// Weight and Type may be nil, meaning unit weights and tree edges.
type Graph[N comparable, E comparable] struct {
	Root   N
	Nodes  []N
	Edges  []E
	Source func(E) N
	Target func(E) N
	Weight func(E) float64
	Type   func(E) phylo.EdgeType
}

// FromNetwork adapts a [phylo.Network] for the engine.
func FromNetwork(net *phylo.Network) *Graph[*phylo.Node, *phylo.Edge] {
	return &Graph[*phylo.Node, *phylo.Edge]{
		Root:   net.Root(),
		Nodes:  net.Nodes(),
		Edges:  net.Edges(),
		Source: func(e *phylo.Edge) *phylo.Node { return e.Source },
		Target: func(e *phylo.Edge) *phylo.Node { return e.Target },
		Weight: func(e *phylo.Edge) float64 { return e.Weight },
		Type:   func(e *phylo.Edge) phylo.EdgeType { return e.Type },
	}
}

// index is the adjacency view of a Graph built once per call.
type index[N comparable, E comparable] struct {
	g     *Graph[N, E]
	out   map[N][]E
	in    map[N][]E
	kids  map[N][]N
	order []N // topological, root first
}

func newIndex[N comparable, E comparable](g *Graph[N, E]) (*index[N, E], error) {
	if g == nil || g.Source == nil || g.Target == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph needs source and target accessors")
	}
	member := make(map[N]bool, len(g.Nodes))
	for _, v := range g.Nodes {
		member[v] = true
	}
	if !member[g.Root] {
		return nil, errors.New(errors.ErrCodeNoRoot, "root is not a node of the graph")
	}

	ix := &index[N, E]{
		g:    g,
		out:  make(map[N][]E, len(g.Nodes)),
		in:   make(map[N][]E, len(g.Nodes)),
		kids: make(map[N][]N, len(g.Nodes)),
	}
	for _, e := range g.Edges {
		s, t := g.Source(e), g.Target(e)
		if !member[s] || !member[t] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge endpoint is not a node of the graph")
		}
		ix.out[s] = append(ix.out[s], e)
		ix.in[t] = append(ix.in[t], e)
		ix.kids[s] = append(ix.kids[s], t)
	}

	order, err := traverse.Topological(g.Root, ix.children)
	if stderrors.Is(err, traverse.ErrCycle) {
		return nil, errors.Wrap(errors.ErrCodeNotDAG, err, "graph is not acyclic")
	}
	if len(ix.in[g.Root]) > 0 {
		return nil, errors.New(errors.ErrCodeNotDAG, "root has incoming edges")
	}
	if len(order) != len(member) {
		return nil, errors.New(errors.ErrCodeUnreachable, "%d of %d nodes are not reachable from the root",
			len(member)-len(order), len(member))
	}
	ix.order = order
	return ix, nil
}

func (ix *index[N, E]) children(v N) []N { return ix.kids[v] }

func (ix *index[N, E]) weight(e E) float64 {
	if ix.g.Weight == nil {
		return 1
	}
	return ix.g.Weight(e)
}

func (ix *index[N, E]) edgeType(e E) phylo.EdgeType {
	if ix.g.Type == nil {
		return phylo.EdgeTree
	}
	return ix.g.Type(e)
}

func (ix *index[N, E]) isReticulate(v N) bool { return len(ix.in[v]) > 1 }

// reticulated reports whether any node has several parents or any edge is a
// transfer edge.
func (ix *index[N, E]) reticulated() bool {
	for _, v := range ix.g.Nodes {
		if ix.isReticulate(v) {
			return true
		}
	}
	for _, e := range ix.g.Edges {
		if ix.edgeType(e) == phylo.EdgeTransfer {
			return true
		}
	}
	return false
}

// offset is the cladogram depth step along an edge.
func offset(t phylo.EdgeType) float64 {
	switch t {
	case phylo.EdgeTransfer:
		return 0
	case phylo.EdgeCombining:
		return 0.5
	default:
		return 1
	}
}

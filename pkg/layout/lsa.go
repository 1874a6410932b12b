package layout

import (
	"github.com/matzehuels/phylolayout/pkg/phylo"
	"github.com/matzehuels/phylolayout/pkg/traverse"
)

// ComputeLSAChildren fills lsa with the ordered LSA children of every node.
//
// The LSA of a node is its immediate dominator: the lowest node that lies on
// every path from the root to it. A node reachable through tree edges only
// ignores its incoming transfer edges, so a transferred lineage stays below
// its vertical parent. The LSA children of v are the nodes whose LSA is v,
// ordered by first visit in a depth-first walk along out-edges. For a tree
// they equal the literal children.
//
// If lsa already holds an entry for every node it is left unchanged; any
// other content is discarded and recomputed.
func ComputeLSAChildren[N comparable, E comparable](g *Graph[N, E], lsa map[N][]N) error {
	ix, err := newIndex(g)
	if err != nil {
		return err
	}
	ix.computeLSA(lsa)
	return nil
}

func (ix *index[N, E]) computeLSA(lsa map[N][]N) {
	if complete(ix.g.Nodes, lsa) {
		return
	}
	clear(lsa)

	idom := ix.dominators()

	for _, v := range ix.g.Nodes {
		lsa[v] = []N{}
	}
	traverse.PreOrder(ix.g.Root, ix.children, func(v N) {
		if v == ix.g.Root {
			return
		}
		p := idom[v]
		lsa[p] = append(lsa[p], v)
	})
}

func complete[N comparable](nodes []N, lsa map[N][]N) bool {
	if len(lsa) == 0 {
		return false
	}
	for _, v := range nodes {
		if _, ok := lsa[v]; !ok {
			return false
		}
	}
	return true
}

// dominators runs the Cooper-Harvey-Kennedy iteration over the topological
// order. On a DAG a single pass reaches the fixpoint.
func (ix *index[N, E]) dominators() map[N]N {
	rank := make(map[N]int, len(ix.order))
	for i, v := range ix.order {
		rank[v] = i
	}

	idom := make(map[N]N, len(ix.order))
	root := ix.g.Root
	idom[root] = root

	intersect := func(a, b N) N {
		for a != b {
			for rank[a] > rank[b] {
				a = idom[a]
			}
			for rank[b] > rank[a] {
				b = idom[b]
			}
		}
		return a
	}

	for _, v := range ix.order[1:] {
		preds := ix.stableParents(v)
		d := preds[0]
		for _, p := range preds[1:] {
			d = intersect(d, p)
		}
		idom[v] = d
	}
	return idom
}

// stableParents returns the sources of v's non-transfer in-edges, or of all
// in-edges when v is reached by transfer edges only.
func (ix *index[N, E]) stableParents(v N) []N {
	var tree, all []N
	for _, e := range ix.in[v] {
		s := ix.g.Source(e)
		all = append(all, s)
		if ix.edgeType(e) != phylo.EdgeTransfer {
			tree = append(tree, s)
		}
	}
	if len(tree) > 0 {
		return tree
	}
	return all
}

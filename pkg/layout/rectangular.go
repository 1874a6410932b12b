package layout

import (
	"math"

	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/phylo"
	"github.com/matzehuels/phylolayout/pkg/traverse"
)

// depths returns the primary coordinate of every node for the scaling mode.
// LateBranching starts from the early-branching cladogram.
func (ix *index[N, E]) depths(s Scaling) map[N]float64 {
	if s == ToScale {
		return ix.phylogramDepth()
	}
	return ix.cladogramDepth()
}

// phylogramDepth sums branch lengths from the root. A node with several
// parents is placed below the deepest one. Transfer edges do not add length;
// they only matter for nodes that have no other parent.
func (ix *index[N, E]) phylogramDepth() map[N]float64 {
	depth := make(map[N]float64, len(ix.order))
	depth[ix.g.Root] = 0
	for _, v := range ix.order[1:] {
		tree, transfer := math.Inf(-1), math.Inf(-1)
		for _, e := range ix.in[v] {
			src := depth[ix.g.Source(e)]
			if ix.edgeType(e) == phylo.EdgeTransfer {
				transfer = math.Max(transfer, src)
			} else {
				tree = math.Max(tree, src+ix.weight(e))
			}
		}
		if math.IsInf(tree, -1) {
			depth[v] = transfer
		} else {
			depth[v] = tree
		}
	}
	return depth
}

// cladogramDepth ignores weights: every node sits one offset below its
// deepest parent, and leaves are then aligned at the largest depth.
func (ix *index[N, E]) cladogramDepth() map[N]float64 {
	depth := make(map[N]float64, len(ix.order))
	depth[ix.g.Root] = 0
	for _, v := range ix.order[1:] {
		d := math.Inf(-1)
		for _, e := range ix.in[v] {
			d = math.Max(d, depth[ix.g.Source(e)]+offset(ix.edgeType(e)))
		}
		depth[v] = d
	}

	var deepest float64
	for _, d := range depth {
		deepest = math.Max(deepest, d)
	}
	for _, v := range ix.order {
		if len(ix.out[v]) == 0 {
			depth[v] = deepest
		}
	}
	return depth
}

// ranks assigns the secondary coordinate. Leaves of the LSA tree get
// 0, 1, 2, ... in traversal order; internal nodes are averaged according to
// the averaging mode. It also returns the number of leaves.
func ranks[N comparable](root N, lsa map[N][]N, averaging Averaging) (map[N]float64, int) {
	children := func(v N) []N { return lsa[v] }
	rank := make(map[N]float64, len(lsa))
	leafSum := make(map[N]float64, len(lsa))
	leafCount := make(map[N]int, len(lsa))

	n := 0
	traverse.PostOrder(root, children, func(v N) {
		kids := lsa[v]
		if len(kids) == 0 {
			rank[v] = float64(n)
			leafSum[v], leafCount[v] = float64(n), 1
			n++
			return
		}
		var childSum float64
		for _, c := range kids {
			childSum += rank[c]
			leafSum[v] += leafSum[c]
			leafCount[v] += leafCount[c]
		}
		if averaging == LeafAverage {
			rank[v] = leafSum[v] / float64(leafCount[v])
		} else {
			rank[v] = childSum / float64(len(kids))
		}
	})
	return rank, n
}

// leafSpan returns the lowest and highest leaf rank below every node.
func leafSpan[N comparable](root N, lsa map[N][]N) (lo, hi map[N]float64, n int) {
	lo = make(map[N]float64, len(lsa))
	hi = make(map[N]float64, len(lsa))
	traverse.PostOrder(root, func(v N) []N { return lsa[v] }, func(v N) {
		kids := lsa[v]
		if len(kids) == 0 {
			lo[v], hi[v] = float64(n), float64(n)
			n++
			return
		}
		lo[v], hi[v] = lo[kids[0]], hi[kids[len(kids)-1]]
	})
	return lo, hi, n
}

func rectangularPoints[N comparable](depth, rank map[N]float64, points map[N]geom.Point) {
	for v, d := range depth {
		points[v] = geom.Pt(d, rank[v])
	}
}

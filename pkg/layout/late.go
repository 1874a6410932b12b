package layout

import (
	"math"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/phylo"
	"github.com/matzehuels/phylolayout/pkg/traverse"
)

// ModifyToLateBranching moves internal nodes of a rectangular layout as far
// from the root as their children allow: x(v) becomes the minimum over
// out-edges of x(target) minus the edge offset (1 for tree, 0.5 for
// combining, 0 for transfer edges).
//
// Nodes with an outgoing transfer edge and all their ancestors keep their
// position, so transfer edges stay where the early-branching layout put
// them. Only the x coordinate changes.
func ModifyToLateBranching[N comparable, E comparable](g *Graph[N, E], points map[N]geom.Point) error {
	ix, err := newIndex(g)
	if err != nil {
		return err
	}
	depth := make(map[N]float64, len(points))
	for _, v := range g.Nodes {
		p, ok := points[v]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "no point for node %v", v)
		}
		depth[v] = p[0]
	}
	ix.lateBranching(depth)
	for v, d := range depth {
		points[v] = geom.Pt(d, points[v][1])
	}
	return nil
}

func (ix *index[N, E]) lateBranching(depth map[N]float64) {
	exempt := make(map[N]bool)
	traverse.PostOrder(ix.g.Root, ix.children, func(v N) {
		out := ix.out[v]
		for _, e := range out {
			if ix.edgeType(e) == phylo.EdgeTransfer || exempt[ix.g.Target(e)] {
				exempt[v] = true
			}
		}
		if exempt[v] || len(out) == 0 {
			return
		}
		d := math.Inf(1)
		for _, e := range out {
			d = math.Min(d, depth[ix.g.Target(e)]-offset(ix.edgeType(e)))
		}
		depth[v] = d
	})
}

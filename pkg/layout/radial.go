package layout

import (
	"github.com/matzehuels/phylolayout/pkg/geom"
)

// radialPoints grows every edge outward along the angle of its target.
// A node hangs off the deepest of its stable parents: its only parent in a
// tree, the deepest tree parent of a reticulate node, and a transfer donor
// only when no tree edge reaches it. The root sits at the origin.
func (ix *index[N, E]) radialPoints(depth, angles map[N]float64, points map[N]geom.Point) {
	points[ix.g.Root] = geom.Origin
	for _, v := range ix.order[1:] {
		parents := ix.stableParents(v)
		p := parents[0]
		for _, s := range parents[1:] {
			if depth[s] > depth[p] {
				p = s
			}
		}
		points[v] = geom.Add(points[p], geom.Polar(angles[v], depth[v]-depth[p]))
	}
}

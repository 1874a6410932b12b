package layout

import (
	"github.com/matzehuels/phylolayout/pkg/geom"
)

// triangularPoints centres each node on its leaf interval. Without a
// to-scale depth, x is chosen so that every edge is a 45 degree diagonal:
// leaves share x = (n-1)/2 and a node spanning k leaf slots sits k/2 before.
func triangularPoints[N comparable](root N, lsa map[N][]N, depth map[N]float64, points map[N]geom.Point) {
	lo, hi, n := leafSpan(root, lsa)
	apex := float64(n-1) / 2
	for v := range lo {
		x := apex - (hi[v]-lo[v])/2
		if depth != nil {
			x = depth[v]
		}
		points[v] = geom.Pt(x, (lo[v]+hi[v])/2)
	}
}

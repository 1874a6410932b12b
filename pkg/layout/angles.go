package layout

import (
	"github.com/matzehuels/phylolayout/pkg/geom"
)

// ComputeAngles assigns every node reachable through lsa an angle in
// radians. Leaf i of n, in LSA traversal order, gets 2πi/n; internal nodes
// are averaged from their LSA children or leaves. angles is cleared first.
func ComputeAngles[N comparable](root N, lsa map[N][]N, averaging Averaging, angles map[N]float64) {
	clear(angles)
	rank, n := ranks(root, lsa, averaging)
	for v, r := range rank {
		angles[v] = geom.FullCircle * r / float64(n)
	}
}

func circularPoints[N comparable](depth, angles map[N]float64, points map[N]geom.Point) {
	for v, d := range depth {
		points[v] = geom.Polar(angles[v], d)
	}
}

package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a 2D location. X is the primary (depth) axis in rectangular
// layouts; Y is the secondary (leaf order) axis.
type Point = orb.Point

// Origin is the point (0, 0).
var Origin = Point{0, 0}

// FullCircle is one full rotation in radians.
const FullCircle = 2 * math.Pi

// Pt returns the point (x, y).
func Pt(x, y float64) Point { return Point{x, y} }

// Polar returns the point at the given angle and distance from the origin.
func Polar(angle, radius float64) Point {
	return Point{radius * math.Cos(angle), radius * math.Sin(angle)}
}

// Angle returns the direction of p seen from the origin, in [0, 2π).
// The origin itself has angle 0.
func Angle(p Point) float64 {
	if p[0] == 0 && p[1] == 0 {
		return 0
	}
	return Normalize(math.Atan2(p[1], p[0]))
}

// Radius returns the distance of p from the origin.
func Radius(p Point) float64 {
	return math.Hypot(p[0], p[1])
}

// Normalize maps an angle into [0, 2π).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, FullCircle)
	if a < 0 {
		a += FullCircle
	}
	if a >= FullCircle {
		a = 0
	}
	return a
}

// Translate returns p shifted by (dx, dy).
func Translate(p Point, dx, dy float64) Point {
	return Point{p[0] + dx, p[1] + dy}
}

// Add returns the component-wise sum p + q.
func Add(p, q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1]}
}

// Distance returns the euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return planar.Distance(p, q)
}

// ArcDistance returns the shorter angular distance between two angles,
// in [0, π].
func ArcDistance(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	return math.Min(d, FullCircle-d)
}

// Bounds returns the smallest axis-aligned rectangle containing all points.
// It returns the zero bound when points is empty.
func Bounds(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	b := points[0].Bound()
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b
}

// Fit scales and translates points in place so that their bounds fill a
// width x height frame with the given margin, preserving aspect ratio.
// Degenerate extents (single point, collinear points) are centred.
func Fit(points []Point, width, height, margin float64) {
	if len(points) == 0 {
		return
	}
	b := Bounds(points)
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	availW, availH := math.Max(width-2*margin, 0), math.Max(height-2*margin, 0)

	scale := math.Inf(1)
	if w > 0 {
		scale = availW / w
	}
	if h > 0 {
		scale = math.Min(scale, availH/h)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	offX := margin + (availW-w*scale)/2
	offY := margin + (availH-h*scale)/2
	for i, p := range points {
		points[i] = Translate(Point{(p[0] - b.Min[0]) * scale, (p[1] - b.Min[1]) * scale}, offX, offY)
	}
}

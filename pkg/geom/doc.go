// Package geom provides the 2D primitives used by the layout engine.
//
// Points are [orb.Point] values so downstream code can hand them straight to
// the orb ecosystem. Angles are in radians, measured counter-clockwise from
// the positive x axis, and are normalised to [0, 2π) where the package
// returns them.
package geom

// Package pkg provides the libraries behind phylolayout, a layout engine for
// rooted phylogenetic trees and networks.
//
// # Overview
//
// A network is parsed from extended Newick, laid out by the generic engine
// and exported as a serialisable document that renderers consume:
//
//	Newick text
//	     ↓
//	[newick] → [phylo.Network]
//	     ↓
//	[layout.Apply] (LSA tree, optional [layout/optimize], strategy)
//	     ↓
//	[export.Document] → JSON / YAML / BSON
//	     ↓
//	[render/nodelink] → DOT / SVG / PNG
//
// [pipeline] wires these stages together with a [cache] and the
// [observability] hooks; [config] supplies user defaults.
//
// # Quick Start
//
//	net, _ := newick.Parse("((a,(b)h#H1),(#H1,c));")
//	g := layout.FromNetwork(net)
//
//	lsa := map[*phylo.Node][]*phylo.Node{}
//	angles := map[*phylo.Node]float64{}
//	points := map[*phylo.Node]geom.Point{}
//	err := layout.Apply(g, layout.Options{
//	    Layout:                layout.Circular,
//	    Scaling:               layout.EarlyBranching,
//	    OptimizeReticulations: true,
//	}, lsa, angles, points)
//
// The engine is generic over node and edge types, so callers with their own
// graph representation fill a [layout.Graph] with accessor functions instead
// of converting to [phylo.Network].
package pkg

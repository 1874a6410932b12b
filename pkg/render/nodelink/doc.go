// Package nodelink draws computed layouts as node-link diagrams.
//
// # Overview
//
// [ToDOT] converts an [export.Document] to Graphviz DOT source in which every
// node is pinned at its computed position. [Render] runs the neato engine on
// that source, which keeps pinned nodes in place and only routes edges, so
// the picture shows exactly the geometry the layout engine produced.
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Edge Styles
//
// Tree edges are solid, combining edges are drawn in blue and transfer edges
// are dashed. In rectangular layouts tree edges are drawn as elbows through
// an invisible corner node at (x(parent), y(child)).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is required.
//
// [export.Document]: github.com/matzehuels/phylolayout/pkg/export.Document
package nodelink

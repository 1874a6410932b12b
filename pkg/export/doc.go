// Package export turns a computed layout into a self-contained document.
//
// A [Document] lists every node with its position (and angle for polar
// layouts), every edge with its type and weight, and the bounding box of the
// drawing. Documents can be fitted to a frame with [Document.Fit] and
// serialised as JSON, YAML or BSON:
//
//	doc := export.Build(net, opts, lsa, angles, points)
//	doc.Fit(800, 600, 20)
//	data, err := export.Marshal(doc, export.FormatJSON)
//
// Node IDs are the network's insertion-order IDs, so edges and LSA children
// refer to nodes by ID rather than by label.
package export

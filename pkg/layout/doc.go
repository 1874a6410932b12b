// Package layout computes node coordinates for rooted phylogenetic trees and
// networks.
//
// # Overview
//
// The engine is generic over the caller's node and edge types. A [Graph]
// describes the network through a root, node and edge slices and accessor
// functions; the engine never copies or mutates it. Results are written into
// caller-owned maps:
//
//   - lsa maps every node to its ordered LSA children (see [ComputeLSAChildren])
//   - angles maps nodes to angles in radians (circular and radial layouts)
//   - points maps nodes to their final 2D position
//
// # Layouts
//
// [Apply] dispatches on [Layout] and [Scaling]:
//
//   - [Rectangular] places the depth on the x axis and the leaf rank on the y axis
//   - [Circular] uses the rectangular depth as radius and the leaf rank as angle
//   - [Radial] draws each edge along the angle of its target node
//   - [Triangular] draws tree edges as diagonals of a leaf-spanning triangle
//
// With [ToScale] the depth of a node is the sum of branch lengths from the
// root. [EarlyBranching] ignores weights and places every node one step below
// its deepest parent, with all leaves aligned. [LateBranching] additionally
// pulls internal nodes down to just above their shallowest child, see
// [ModifyToLateBranching].
//
// # Reticulations
//
// Nodes with more than one incoming edge are drawn below their lowest stable
// ancestor (LSA). With [Options.OptimizeReticulations] set, the LSA child order
// is permuted by package optimize to shorten the reticulate edges.
//
// # Preconditions
//
// The graph must be a DAG in which every node is reachable from the root.
// Violations are reported as [errors.ErrCodeNotDAG], [errors.ErrCodeNoRoot] or
// [errors.ErrCodeUnreachable] rather than producing undefined geometry.
//
// [errors.ErrCodeNotDAG]: github.com/matzehuels/phylolayout/pkg/errors.ErrCodeNotDAG
// [errors.ErrCodeNoRoot]: github.com/matzehuels/phylolayout/pkg/errors.ErrCodeNoRoot
// [errors.ErrCodeUnreachable]: github.com/matzehuels/phylolayout/pkg/errors.ErrCodeUnreachable
package layout

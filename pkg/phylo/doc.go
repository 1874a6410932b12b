// Package phylo provides a rooted phylogenetic network: a directed acyclic
// graph whose nodes are taxa or ancestors and whose edges carry a branch
// length and an [EdgeType].
//
// # Overview
//
// A phylogenetic tree is the special case in which every node except the root
// has exactly one parent. Networks additionally contain reticulate nodes with
// several incoming edges, modelling hybridization ([EdgeCombining]) or
// horizontal gene transfer ([EdgeTransfer]).
//
// Create a network with [New], add nodes with [Network.AddNode] and edges with
// [Network.AddEdge]. Out-edges keep their insertion order, which is the child
// order used by every layout algorithm:
//
//	net := phylo.New()
//	r := net.AddNode("")
//	a := net.AddNode("a")
//	b := net.AddNode("b")
//	net.AddEdge(r, a, 1, phylo.EdgeTree)
//	net.AddEdge(r, b, 2, phylo.EdgeTree)
//
// Use [Network.Validate] to check the layout preconditions (a single root,
// no cycles, every node reachable) before computing a layout.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. Read-only access from
// several goroutines is fine once construction has finished.
//
// The [newick] package reads and writes networks in extended Newick format.
//
// [newick]: github.com/matzehuels/phylolayout/pkg/newick
package phylo

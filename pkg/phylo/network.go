package phylo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/phylolayout/pkg/traverse"
)

var (
	// ErrUnknownSourceNode is returned by [Network.AddEdge] when the source
	// node does not belong to the network.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Network.AddEdge] when the target
	// node does not belong to the network.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Network.AddEdge] for an edge from a node to itself.
	ErrSelfLoop = errors.New("self loop")

	// ErrNegativeWeight is returned by [Network.AddEdge] for a negative branch length.
	ErrNegativeWeight = errors.New("negative edge weight")

	// ErrNoRoot is returned by [Network.Validate] when the network is empty or
	// no unique node without parents exists.
	ErrNoRoot = errors.New("network has no unique root")

	// ErrGraphHasCycle is returned by [Network.Validate] when a directed cycle
	// is reachable from the root.
	ErrGraphHasCycle = errors.New("network contains a cycle")

	// ErrUnreachable is returned by [Network.Validate] when some node cannot
	// be reached from the root.
	ErrUnreachable = errors.New("node not reachable from root")
)

// EdgeType classifies an edge for layout purposes.
type EdgeType int

const (
	// EdgeTree is an ordinary vertical-descent edge.
	EdgeTree EdgeType = iota
	// EdgeCombining is a reticulate edge into a hybrid node.
	EdgeCombining
	// EdgeTransfer is a horizontal gene transfer edge. Its target is drawn at
	// the same depth as its source.
	EdgeTransfer
)

// String returns the lowercase name of the edge type.
func (t EdgeType) String() string {
	switch t {
	case EdgeTree:
		return "tree"
	case EdgeCombining:
		return "combining"
	case EdgeTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("EdgeType(%d)", int(t))
	}
}

// IsReticulate reports whether the edge is a combining or transfer edge.
func (t EdgeType) IsReticulate() bool { return t != EdgeTree }

// Node is a vertex of the network. Nodes are compared by pointer identity;
// labels need not be unique and internal nodes are often unlabeled.
type Node struct {
	ID    int    // Position in insertion order, unique within the network
	Label string // Taxon name, may be empty
}

// String returns the label, or "#<id>" for unlabeled nodes.
func (n *Node) String() string {
	if n.Label != "" {
		return n.Label
	}
	return fmt.Sprintf("#%d", n.ID)
}

// Edge is a directed branch between two nodes.
type Edge struct {
	ID     int
	Source *Node
	Target *Node
	Weight float64 // Branch length, non-negative
	Type   EdgeType
}

// Network is a rooted phylogenetic network.
//
// The zero value is not usable - use New to create a valid Network.
type Network struct {
	nodes    []*Node
	edges    []*Edge
	outgoing map[*Node][]*Edge
	incoming map[*Node][]*Edge
	member   map[*Node]bool
	root     *Node
}

// New creates an empty network.
func New() *Network {
	return &Network{
		outgoing: make(map[*Node][]*Edge),
		incoming: make(map[*Node][]*Edge),
		member:   make(map[*Node]bool),
	}
}

// AddNode appends a new node with the given label and returns it.
func (n *Network) AddNode(label string) *Node {
	node := &Node{ID: len(n.nodes), Label: label}
	n.nodes = append(n.nodes, node)
	n.member[node] = true
	return node
}

// AddEdge appends a directed edge from src to tgt.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint
// was not created by this network, ErrSelfLoop for src == tgt and
// ErrNegativeWeight for weight < 0.
//
// AddEdge does not check for cycles - use Validate after construction.
func (n *Network) AddEdge(src, tgt *Node, weight float64, typ EdgeType) (*Edge, error) {
	if !n.member[src] {
		return nil, ErrUnknownSourceNode
	}
	if !n.member[tgt] {
		return nil, ErrUnknownTargetNode
	}
	if src == tgt {
		return nil, ErrSelfLoop
	}
	if weight < 0 {
		return nil, ErrNegativeWeight
	}
	e := &Edge{ID: len(n.edges), Source: src, Target: tgt, Weight: weight, Type: typ}
	n.edges = append(n.edges, e)
	n.outgoing[src] = append(n.outgoing[src], e)
	n.incoming[tgt] = append(n.incoming[tgt], e)
	return e, nil
}

// SetRoot fixes the root explicitly. Without it, Root returns the unique node
// with no incoming edges.
func (n *Network) SetRoot(r *Node) { n.root = r }

// Root returns the explicit root, or the unique node without parents.
// Returns nil if there is no such node or it is not unique.
func (n *Network) Root() *Node {
	if n.root != nil {
		return n.root
	}
	var root *Node
	for _, v := range n.nodes {
		if len(n.incoming[v]) == 0 {
			if root != nil {
				return nil
			}
			root = v
		}
	}
	return root
}

// Nodes returns all nodes in insertion order.
// The returned slice is a copy; the node pointers are shared.
func (n *Network) Nodes() []*Node { return slices.Clone(n.nodes) }

// Edges returns all edges in insertion order.
// The returned slice is a copy; the edge pointers are shared.
func (n *Network) Edges() []*Edge { return slices.Clone(n.edges) }

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// OutEdges returns the edges leaving v in insertion order.
// The returned slice should not be modified.
func (n *Network) OutEdges(v *Node) []*Edge { return n.outgoing[v] }

// InEdges returns the edges entering v in insertion order.
// The returned slice should not be modified.
func (n *Network) InEdges(v *Node) []*Edge { return n.incoming[v] }

// Children returns the targets of v's out-edges in order.
func (n *Network) Children(v *Node) []*Node {
	out := make([]*Node, 0, len(n.outgoing[v]))
	for _, e := range n.outgoing[v] {
		out = append(out, e.Target)
	}
	return out
}

// Parents returns the sources of v's in-edges in order.
func (n *Network) Parents(v *Node) []*Node {
	out := make([]*Node, 0, len(n.incoming[v]))
	for _, e := range n.incoming[v] {
		out = append(out, e.Source)
	}
	return out
}

// IsLeaf reports whether v has no children.
func (n *Network) IsLeaf(v *Node) bool { return len(n.outgoing[v]) == 0 }

// IsReticulate reports whether v has more than one parent.
func (n *Network) IsReticulate(v *Node) bool { return len(n.incoming[v]) > 1 }

// IsReticulated reports whether any node has more than one parent or any
// edge is a transfer edge.
func (n *Network) IsReticulated() bool {
	for _, v := range n.nodes {
		if n.IsReticulate(v) {
			return true
		}
	}
	for _, e := range n.edges {
		if e.Type == EdgeTransfer {
			return true
		}
	}
	return false
}

// Leaves returns all nodes without children, in insertion order.
func (n *Network) Leaves() []*Node {
	var out []*Node
	for _, v := range n.nodes {
		if n.IsLeaf(v) {
			out = append(out, v)
		}
	}
	return out
}

// NodeByLabel returns the first node with the given label.
func (n *Network) NodeByLabel(label string) (*Node, bool) {
	for _, v := range n.nodes {
		if v.Label == label {
			return v, true
		}
	}
	return nil, false
}

// Validate checks the layout preconditions and returns nil if they hold:
//
//  1. A unique root exists (ErrNoRoot)
//  2. No directed cycle is reachable from the root (ErrGraphHasCycle)
//  3. Every node is reachable from the root (ErrUnreachable)
//
// Validation runs in O(N+E) time.
func (n *Network) Validate() error {
	root := n.Root()
	if root == nil {
		return ErrNoRoot
	}
	order, err := traverse.Topological(root, n.Children)
	if err != nil {
		return ErrGraphHasCycle
	}
	if len(order) != len(n.nodes) {
		reached := make(map[*Node]bool, len(order))
		for _, v := range order {
			reached[v] = true
		}
		for _, v := range n.nodes {
			if !reached[v] {
				return fmt.Errorf("%w: %s", ErrUnreachable, v)
			}
		}
	}
	return nil
}

// Package traverse provides depth-first traversals over graphs described
// only by a root and a children accessor. Node types are caller-supplied; the
// package never owns the graph.
//
// All traversals visit each reachable node exactly once, so they are safe on
// DAGs where a node has several parents. Recursion is replaced by an explicit
// stack to keep deep caterpillar trees off the goroutine stack.
package traverse

import "errors"

// ErrCycle is returned by [Topological] when the subgraph reachable from the
// root contains a directed cycle.
var ErrCycle = errors.New("graph contains a cycle")

// Children returns the ordered successors of a node.
type Children[N comparable] func(N) []N

type frame[N comparable] struct {
	node N
	next int
}

// PostOrder calls visit for every node reachable from root, children before
// parents, in children order.
func PostOrder[N comparable](root N, children Children[N], visit func(N)) {
	seen := map[N]bool{root: true}
	stack := []frame[N]{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := children(top.node)
		if top.next < len(kids) {
			c := kids[top.next]
			top.next++
			if !seen[c] {
				seen[c] = true
				stack = append(stack, frame[N]{node: c})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		visit(top.node)
	}
}

// PreOrder calls visit for every node reachable from root, parents before
// children, in children order.
func PreOrder[N comparable](root N, children Children[N], visit func(N)) {
	seen := map[N]bool{root: true}
	visit(root)
	stack := []frame[N]{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := children(top.node)
		if top.next < len(kids) {
			c := kids[top.next]
			top.next++
			if !seen[c] {
				seen[c] = true
				visit(c)
				stack = append(stack, frame[N]{node: c})
			}
			continue
		}
		stack = stack[:len(stack)-1]
	}
}

// Collect returns the nodes reachable from root in post-order.
func Collect[N comparable](root N, children Children[N]) []N {
	var out []N
	PostOrder(root, children, func(n N) { out = append(out, n) })
	return out
}

// Topological returns the nodes reachable from root ordered so that every
// node precedes all of its children. Returns ErrCycle if a back edge exists.
func Topological[N comparable](root N, children Children[N]) ([]N, error) {
	const (
		white = iota
		gray
		black
	)

	color := map[N]int{root: gray}
	var post []N
	stack := []frame[N]{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := children(top.node)
		if top.next < len(kids) {
			c := kids[top.next]
			top.next++
			switch color[c] {
			case white:
				color[c] = gray
				stack = append(stack, frame[N]{node: c})
			case gray:
				return nil, ErrCycle
			}
			continue
		}
		color[top.node] = black
		post = append(post, top.node)
		stack = stack[:len(stack)-1]
	}

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post, nil
}

// Leaves returns the nodes reachable from root that have no children,
// in depth-first order.
func Leaves[N comparable](root N, children Children[N]) []N {
	var out []N
	PostOrder(root, children, func(n N) {
		if len(children(n)) == 0 {
			out = append(out, n)
		}
	})
	return out
}

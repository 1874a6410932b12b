// Package optimize reorders LSA children to shorten reticulate edges.
//
// A reticulate edge joins two nodes that the LSA tree places in different
// subtrees. The drawing is easier to read when such partners sit close
// together on the leaf axis (or around the circle). [Apply] searches child
// orderings node by node and keeps an ordering only when it lowers the total
// displacement, so the result is never worse than the input.
//
// Nodes with at most [Problem.ExhaustiveLimit] children are tried in every
// permutation. Larger fan-outs use random pairwise swaps drawn from
// [Problem.Rand]. [Problem.Canceled] is polled between evaluations.
package optimize

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/phylolayout/pkg/layout/optimize/perm"
	"github.com/matzehuels/phylolayout/pkg/traverse"
)

const (
	DefaultMaxRounds       = 10
	DefaultExhaustiveLimit = 6

	// maxExhaustive bounds ExhaustiveLimit; 8! evaluations per node is
	// already slow on large networks.
	maxExhaustive = 8

	epsilon = 1e-9
)

// Problem is the input of [Apply].
type Problem[N comparable] struct {
	Root     N
	Children func(N) []N // current LSA children
	Partners func(N) []N // nodes joined to N by a reticulate edge, symmetric
	Circular bool        // measure displacement as the shorter arc

	Rand     *rand.Rand  // nil uses a fixed seed
	Canceled func() bool // nil never cancels

	MaxRounds       int // 0 means DefaultMaxRounds
	ExhaustiveLimit int // 0 means DefaultExhaustiveLimit
}

// Apply returns a revised LSA-children map for every node reachable from
// p.Root. Children lists are permutations of the input lists; the parent of
// every node is unchanged.
func Apply[N comparable](p Problem[N]) map[N][]N {
	s := newSearch(p)
	s.run()
	return s.order
}

// Cost returns the total displacement between reticulate partners under
// the given children ordering.
func Cost[N comparable](p Problem[N], children map[N][]N) float64 {
	s := newSearch(p)
	for v, kids := range children {
		if _, ok := s.order[v]; ok {
			s.order[v] = kids
		}
	}
	return s.cost()
}

type search[N comparable] struct {
	p     Problem[N]
	order map[N][]N
	nodes []N // preorder
	rng   *rand.Rand

	pos map[N]float64
}

func newSearch[N comparable](p Problem[N]) *search[N] {
	if p.MaxRounds <= 0 {
		p.MaxRounds = DefaultMaxRounds
	}
	if p.ExhaustiveLimit <= 0 {
		p.ExhaustiveLimit = DefaultExhaustiveLimit
	}
	p.ExhaustiveLimit = min(p.ExhaustiveLimit, maxExhaustive)
	if p.Canceled == nil {
		p.Canceled = func() bool { return false }
	}
	if p.Partners == nil {
		p.Partners = func(N) []N { return nil }
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 1^0xdeadbeef))
	}

	s := &search[N]{p: p, order: make(map[N][]N), rng: rng, pos: make(map[N]float64)}
	traverse.PreOrder(p.Root, p.Children, func(v N) {
		s.order[v] = append([]N(nil), p.Children(v)...)
		s.nodes = append(s.nodes, v)
	})
	return s
}

func (s *search[N]) children(v N) []N { return s.order[v] }

// candidates returns the nodes whose child order can change the cost: those
// with at least two children and a partnered node somewhere below.
func (s *search[N]) candidates() []N {
	marked := make(map[N]bool)
	traverse.PostOrder(s.p.Root, s.children, func(v N) {
		if len(s.p.Partners(v)) > 0 {
			marked[v] = true
		}
		for _, c := range s.order[v] {
			if marked[c] {
				marked[v] = true
			}
		}
	})
	var out []N
	for _, v := range s.nodes {
		if marked[v] && len(s.order[v]) > 1 {
			out = append(out, v)
		}
	}
	return out
}

func (s *search[N]) run() {
	cands := s.candidates()
	if len(cands) == 0 {
		return
	}
	best := s.cost()
	for round := 0; round < s.p.MaxRounds; round++ {
		improved := false
		for _, v := range cands {
			if s.p.Canceled() {
				return
			}
			var c float64
			if len(s.order[v]) <= s.p.ExhaustiveLimit {
				c = s.exhaustive(v, best)
			} else {
				c = s.swaps(v, best)
			}
			if c < best-epsilon {
				best = c
				improved = true
			}
		}
		if !improved || best < epsilon {
			return
		}
	}
}

// exhaustive tries every permutation of v's children and keeps the best.
func (s *search[N]) exhaustive(v N, best float64) float64 {
	orig := s.order[v]
	bestKids := orig
	for p := range perm.All(len(orig), 0) {
		if s.p.Canceled() {
			break
		}
		s.order[v] = perm.Apply(orig, p)
		if c := s.cost(); c < best-epsilon {
			best = c
			bestKids = s.order[v]
		}
	}
	s.order[v] = bestKids
	return best
}

// swaps performs random transpositions of v's children, keeping each swap
// only if it lowers the cost.
func (s *search[N]) swaps(v N, best float64) float64 {
	kids := append([]N(nil), s.order[v]...)
	s.order[v] = kids
	n := len(kids)
	for range n * n {
		if s.p.Canceled() {
			break
		}
		i, j := s.rng.IntN(n), s.rng.IntN(n)
		if i == j {
			continue
		}
		kids[i], kids[j] = kids[j], kids[i]
		if c := s.cost(); c < best-epsilon {
			best = c
		} else {
			kids[i], kids[j] = kids[j], kids[i]
		}
	}
	return best
}

// cost places leaves at consecutive ranks, puts each node at the midpoint of
// its leaf interval and sums partner distances. Partners are listed in both
// directions, so every pair is counted twice.
func (s *search[N]) cost() float64 {
	clear(s.pos)
	lo := make(map[N]float64, len(s.order))
	hi := make(map[N]float64, len(s.order))
	leaves := 0
	traverse.PostOrder(s.p.Root, s.children, func(v N) {
		kids := s.order[v]
		if len(kids) == 0 {
			lo[v], hi[v] = float64(leaves), float64(leaves)
			leaves++
		} else {
			lo[v], hi[v] = lo[kids[0]], hi[kids[len(kids)-1]]
		}
		s.pos[v] = (lo[v] + hi[v]) / 2
	})

	n := float64(leaves)
	var total float64
	for _, v := range s.nodes {
		a := s.pos[v]
		for _, u := range s.p.Partners(v) {
			b, ok := s.pos[u]
			if !ok {
				continue
			}
			d := math.Abs(a - b)
			if s.p.Circular {
				d = math.Min(d, n-d)
			}
			total += d
		}
	}
	return total / 2
}

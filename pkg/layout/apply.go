package layout

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/layout/optimize"
)

// Options configures [Apply]. The zero value is a rectangular, to-scale,
// child-averaged layout without reticulation optimisation.
type Options struct {
	Layout    Layout
	Scaling   Scaling
	Averaging Averaging // ignored by Radial, which always uses LeafAverage

	// OptimizeReticulations reorders LSA children to shorten reticulate
	// edges. It has no effect on trees.
	OptimizeReticulations bool
	MaxRounds             int // optimiser rounds, 0 for the default
	ExhaustiveLimit       int // largest fan-out searched exhaustively, 0 for the default

	Rand     *rand.Rand  // random source for the optimiser, nil for a fixed seed
	Canceled func() bool // polled by the optimiser, nil never cancels

	// OnOptimized, if set, receives the reticulate displacement before and
	// after optimisation.
	OnOptimized func(before, after float64)

	Logger *log.Logger // nil discards
}

// Validate reports an ErrCodeInvalidMode error for out-of-range modes.
func (o Options) Validate() error {
	if o.Layout < Rectangular || o.Layout > Triangular {
		return errors.New(errors.ErrCodeInvalidMode, "unknown layout %v", o.Layout)
	}
	if o.Scaling < ToScale || o.Scaling > LateBranching {
		return errors.New(errors.ErrCodeInvalidMode, "unknown scaling %v", o.Scaling)
	}
	if o.Averaging < ChildAverage || o.Averaging > LeafAverage {
		return errors.New(errors.ErrCodeInvalidMode, "unknown averaging %v", o.Averaging)
	}
	return nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// Apply lays out g and writes the result into the caller's maps.
//
// The steps are: detect reticulations, compute or reuse the LSA children,
// optionally optimise their order, compute depths for the scaling mode,
// apply late branching, then derive points (and angles for circular and
// radial layouts). points and angles are cleared and fully repopulated;
// lsa is reused when it already covers every node.
//
// Late branching is not applied to triangular layouts, whose shape is
// defined by the leaf intervals.
func Apply[N comparable, E comparable](g *Graph[N, E], opts Options, lsa map[N][]N, angles map[N]float64, points map[N]geom.Point) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	logger := opts.logger()

	ix, err := newIndex(g)
	if err != nil {
		return err
	}
	clear(points)
	clear(angles)

	reticulated := ix.reticulated()
	ix.computeLSA(lsa)

	if opts.OptimizeReticulations && reticulated {
		ix.optimize(opts, lsa, logger)
	}
	if !complete(g.Nodes, lsa) {
		return errors.New(errors.ErrCodeMissingLSA, "LSA children missing for some nodes")
	}

	if opts.Layout == Triangular && reticulated {
		logger.Warn("triangular layout does not support reticulations, drawing LSA tree only")
	}

	averaging := opts.Averaging
	if opts.Layout == Radial {
		averaging = LeafAverage
	}

	depth := ix.depths(opts.Scaling)
	if opts.Scaling == LateBranching && opts.Layout != Triangular {
		ix.lateBranching(depth)
	}

	switch opts.Layout {
	case Rectangular:
		rank, _ := ranks(g.Root, lsa, averaging)
		rectangularPoints(depth, rank, points)
	case Circular:
		ComputeAngles(g.Root, lsa, averaging, angles)
		circularPoints(depth, angles, points)
	case Radial:
		ComputeAngles(g.Root, lsa, averaging, angles)
		ix.radialPoints(depth, angles, points)
	case Triangular:
		if opts.Scaling != ToScale {
			depth = nil
		}
		triangularPoints(g.Root, lsa, depth, points)
	}

	logger.Debug("layout computed",
		"layout", opts.Layout,
		"scaling", opts.Scaling,
		"averaging", averaging,
		"nodes", len(g.Nodes),
		"reticulated", reticulated)
	return nil
}

// optimize replaces the LSA child order with the optimiser's result.
// Partners are the endpoints of every in-edge of a reticulate node.
func (ix *index[N, E]) optimize(opts Options, lsa map[N][]N, logger *log.Logger) {
	partners := make(map[N][]N)
	for _, v := range ix.g.Nodes {
		if !ix.isReticulate(v) {
			continue
		}
		for _, e := range ix.in[v] {
			u := ix.g.Source(e)
			partners[u] = append(partners[u], v)
			partners[v] = append(partners[v], u)
		}
	}

	problem := optimize.Problem[N]{
		Root:            ix.g.Root,
		Children:        func(v N) []N { return lsa[v] },
		Partners:        func(v N) []N { return partners[v] },
		Circular:        opts.Layout.IsPolar(),
		Rand:            opts.Rand,
		Canceled:        opts.Canceled,
		MaxRounds:       opts.MaxRounds,
		ExhaustiveLimit: opts.ExhaustiveLimit,
	}
	before := optimize.Cost(problem, lsa)
	revised := optimize.Apply(problem)
	for v, kids := range revised {
		lsa[v] = kids
	}
	after := optimize.Cost(problem, lsa)
	logger.Debug("reticulations optimised",
		"before", before,
		"after", after,
		"partnered_nodes", len(partners))
	if opts.OnOptimized != nil {
		opts.OnOptimized(before, after)
	}
}

// Package pipeline runs Newick parsing, layout and export as one unit.
//
// The CLI drives every command through a [Runner]: it parses the input,
// computes the layout (or loads it from the cache), builds the export
// document and optionally renders it. Options carry everything that changes
// the result, so the same Options always produce the same document.
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
//	opts := pipeline.Options{Layout: layout.Circular, Optimize: true}
//	result, err := runner.Execute(ctx, "((a,b),(c,d));", opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylolayout/pkg/cache"
	"github.com/matzehuels/phylolayout/pkg/config"
	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/layout"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// Default values for pipeline options.
const (
	DefaultSeed    uint64 = 42
	DefaultTimeout        = 5 * time.Second
)

// Options configures a pipeline run.
type Options struct {
	Layout    layout.Layout
	Scaling   layout.Scaling
	Averaging layout.Averaging

	// Optimize reorders LSA children to shorten reticulate edges.
	Optimize bool
	// Seed drives the optimiser's random search. Zero selects DefaultSeed.
	Seed uint64
	// Timeout bounds the optimiser. When it expires the best ordering found
	// so far is kept. Zero selects DefaultTimeout; negative disables it.
	Timeout time.Duration

	// Width and Height fit the exported coordinates into a frame with the
	// given margin. Zero leaves engine coordinates untouched.
	Width  float64
	Height float64
	Margin float64

	Logger *log.Logger
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	if err := o.layoutOptions().Validate(); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 || o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame must not be negative: %gx%g margin %g", o.Width, o.Height, o.Margin)
	}
	if o.fits() && (2*o.Margin >= o.Width || 2*o.Margin >= o.Height) {
		return errors.New(errors.ErrCodeInvalidInput, "margin %g leaves no room in a %gx%g frame", o.Margin, o.Width, o.Height)
	}
	return nil
}

func (o *Options) fits() bool { return o.Width > 0 && o.Height > 0 }

// layoutOptions returns the engine options without the per-run fields.
func (o *Options) layoutOptions() layout.Options {
	return layout.Options{
		Layout:                o.Layout,
		Scaling:               o.Scaling,
		Averaging:             o.Averaging,
		OptimizeReticulations: o.Optimize,
		Logger:                o.Logger,
	}
}

// CacheKeyOpts returns the options that identify a cached document.
func (o *Options) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Layout:    o.Layout.String(),
		Scaling:   o.Scaling.String(),
		Averaging: o.Averaging.String(),
		Optimize:  o.Optimize,
		Seed:      o.Seed,
		Width:     o.Width,
		Height:    o.Height,
		Margin:    o.Margin,
	}
}

// FromConfig converts user defaults into pipeline options.
func FromConfig(cfg config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	l, err := layout.ParseLayout(cfg.Layout)
	if err != nil {
		return Options{}, err
	}
	s, err := layout.ParseScaling(cfg.Scaling)
	if err != nil {
		return Options{}, err
	}
	a, err := layout.ParseAveraging(cfg.Averaging)
	if err != nil {
		return Options{}, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return Options{}, err
	}
	if timeout == 0 {
		timeout = -1 // an empty config timeout means no limit
	}
	return Options{
		Layout:    l,
		Scaling:   s,
		Averaging: a,
		Optimize:  cfg.Optimize,
		Seed:      cfg.Seed,
		Timeout:   timeout,
		Width:     cfg.Frame.Width,
		Height:    cfg.Frame.Height,
		Margin:    cfg.Frame.Margin,
	}, nil
}

// Maps holds the engine output for one network.
type Maps struct {
	LSA    map[*phylo.Node][]*phylo.Node
	Angles map[*phylo.Node]float64
	Points map[*phylo.Node]geom.Point

	// Truncated reports that the optimiser hit the timeout. Such layouts
	// are not cached.
	Truncated bool
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	Network  *phylo.Network
	Maps     *Maps // nil when the document came from the cache
	Document *export.Document
	CacheHit bool
	Stats    Stats
}

package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylolayout/pkg/cache"
	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/layout"
	"github.com/matzehuels/phylolayout/pkg/newick"
	"github.com/matzehuels/phylolayout/pkg/observability"
	"github.com/matzehuels/phylolayout/pkg/phylo"
	"github.com/matzehuels/phylolayout/pkg/render/nodelink"
)

// DocumentTTL is how long cached layout documents stay valid.
const DocumentTTL = 7 * 24 * time.Hour

// Runner executes pipeline stages against a cache.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// leaves each run's Options.Logger in charge.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute parses input, lays it out and builds the export document.
// Documents are served from the cache when input and options match a
// previous run.
func (r *Runner) Execute(ctx context.Context, input string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	net, err := r.Parse(ctx, input)
	if err != nil {
		return nil, err
	}
	parseTime := time.Since(start)
	opts.Logger.Info("parsed network", "nodes", net.NodeCount(), "edges", net.EdgeCount(), "duration", parseTime)

	key := cache.LayoutKey(input, opts.CacheKeyOpts())
	if doc := r.cached(ctx, key, opts.Logger); doc != nil {
		opts.Logger.Info("layout loaded from cache", "id", doc.ID)
		return r.result(net, nil, doc, true, parseTime, 0), nil
	}

	start = time.Now()
	maps, err := r.Layout(ctx, net, opts)
	if err != nil {
		return nil, err
	}
	layoutTime := time.Since(start)
	opts.Logger.Info("computed layout", "layout", opts.Layout, "scaling", opts.Scaling, "duration", layoutTime)

	doc := export.Build(net, opts.layoutOptions(), maps.LSA, maps.Angles, maps.Points)
	if opts.fits() {
		doc.Fit(opts.Width, opts.Height, opts.Margin)
	}
	if maps.Truncated {
		opts.Logger.Debug("not caching layout cut short by timeout")
	} else {
		r.store(ctx, key, doc, opts.Logger)
	}
	return r.result(net, maps, doc, false, parseTime, layoutTime), nil
}

func (r *Runner) result(net *phylo.Network, maps *Maps, doc *export.Document, hit bool, parseTime, layoutTime time.Duration) *Result {
	st := Summarize(doc)
	st.ParseTime, st.LayoutTime = parseTime, layoutTime
	return &Result{Network: net, Maps: maps, Document: doc, CacheHit: hit, Stats: st}
}

// Parse reads a single extended Newick statement.
func (r *Runner) Parse(ctx context.Context, input string) (*phylo.Network, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(input))
	start := time.Now()

	net, err := newick.Parse(input)
	nodes := 0
	if net != nil {
		nodes = net.NodeCount()
	}
	hooks.OnParseComplete(ctx, nodes, time.Since(start), err)
	return net, err
}

// Layout runs the engine on net. The options' timeout becomes the
// optimiser's cancellation predicate: when it expires the best ordering
// found so far is drawn and the returned maps are marked Truncated.
// Cancellation of ctx itself aborts with
// ErrCodeCanceled.
func (r *Runner) Layout(ctx context.Context, net *phylo.Network, opts Options) (*Maps, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "layout")
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	hooks := observability.Pipeline()
	lopts := opts.layoutOptions()
	lopts.Rand = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	lopts.Canceled = func() bool { return runCtx.Err() != nil }
	var stopped bool
	lopts.OnOptimized = func(before, after float64) {
		stopped = runCtx.Err() != nil
		hooks.OnOptimize(ctx, before, after, stopped)
	}

	maps := &Maps{
		LSA:    make(map[*phylo.Node][]*phylo.Node),
		Angles: make(map[*phylo.Node]float64),
		Points: make(map[*phylo.Node]geom.Point),
	}

	hooks.OnLayoutStart(ctx, opts.Layout.String(), net.NodeCount())
	start := time.Now()
	err := layout.Apply(layout.FromNetwork(net), lopts, maps.LSA, maps.Angles, maps.Points)
	if err == nil && ctx.Err() != nil {
		err = errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "layout")
	}
	hooks.OnLayoutComplete(ctx, opts.Layout.String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if stopped {
		maps.Truncated = true
		opts.Logger.Warn("optimisation stopped at timeout, keeping best ordering", "timeout", opts.Timeout)
	}
	return maps, nil
}

// Render converts doc to the requested format.
func (r *Runner) Render(ctx context.Context, doc *export.Document, format nodelink.Format, opts nodelink.Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(format))
	start := time.Now()

	out, err := nodelink.Render(ctx, nodelink.ToDOT(doc, opts), format)
	hooks.OnRenderComplete(ctx, string(format), time.Since(start), err)
	return out, err
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil && r.Logger != nil {
		opts.Logger = r.Logger
	}
}

// cached returns the stored document for key. Unreadable entries count as
// misses so a corrupt cache never fails a run.
func (r *Runner) cached(ctx context.Context, key string, logger *log.Logger) *export.Document {
	hooks := observability.Cache()
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
	}
	if !ok || err != nil {
		hooks.OnCacheMiss(ctx, "layout")
		return nil
	}
	doc, err := export.Unmarshal(data, export.FormatBSON)
	if err != nil {
		logger.Warn("discarding unreadable cache entry", "error", err)
		hooks.OnCacheMiss(ctx, "layout")
		return nil
	}
	hooks.OnCacheHit(ctx, "layout")
	return doc
}

func (r *Runner) store(ctx context.Context, key string, doc *export.Document, logger *log.Logger) {
	data, err := export.Marshal(doc, export.FormatBSON)
	if err == nil {
		err = r.Cache.Set(ctx, key, data, DocumentTTL)
	}
	if err != nil {
		logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}

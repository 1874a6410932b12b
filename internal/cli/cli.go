// Package cli implements the phylolayout command-line interface.
package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/phylolayout/pkg/buildinfo"
	"github.com/matzehuels/phylolayout/pkg/cache"
	"github.com/matzehuels/phylolayout/pkg/config"
	"github.com/matzehuels/phylolayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "phylolayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config, empty for the default location
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "phylolayout computes drawings of rooted phylogenetic trees and networks",
		Long: `phylolayout reads rooted phylogenetic trees and networks in extended Newick
format and computes node coordinates for rectangular, circular, radial and
triangular drawings. Reticulate edges can be shortened by reordering children.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+defaultConfigHint()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.lsaCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/phylolayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

func defaultConfigHint() string {
	return filepath.Join("~", ".config", appName, "config.toml")
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the flags shared by commands that run the engine.
// Flags left unset fall back to the config file.
type layoutFlags struct {
	layout    string
	scaling   string
	averaging string
	optimize  bool
	seed      uint64
	timeout   time.Duration
	width     float64
	height    float64
	margin    float64
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&f.layout, "layout", "l", d.Layout, "layout: rectangular, circular, radial, triangular")
	flags.StringVarP(&f.scaling, "scaling", "s", d.Scaling, "branch scaling: to-scale, early, late")
	flags.StringVarP(&f.averaging, "averaging", "a", d.Averaging, "internal node placement: child, leaf")
	f.registerOptimize(cmd)
	flags.Float64Var(&f.width, "width", d.Frame.Width, "frame width, 0 keeps engine coordinates")
	flags.Float64Var(&f.height, "height", d.Frame.Height, "frame height, 0 keeps engine coordinates")
	flags.Float64Var(&f.margin, "margin", d.Frame.Margin, "frame margin")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")

	complete := func(name string, values ...string) {
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	complete("layout", "rectangular", "circular", "radial", "triangular")
	complete("scaling", "to-scale", "early", "late")
	complete("averaging", "child", "leaf")
}

func (f *layoutFlags) registerOptimize(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()
	flags.BoolVar(&f.optimize, "optimize", d.Optimize, "reorder children to shorten reticulate edges")
	flags.Uint64Var(&f.seed, "seed", d.Seed, "random seed for the optimiser")
	flags.DurationVar(&f.timeout, "timeout", 5*time.Second, "time limit for the optimiser")
}

// loadConfig reads the config file and applies every flag the user set.
func (c *CLI) loadConfig(cmd *cobra.Command, f *layoutFlags) (config.Config, error) {
	path, err := c.resolveConfigPath()
	if err != nil {
		return config.Config{}, fmt.Errorf("locate config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("layout", func() { cfg.Layout = f.layout })
	set("scaling", func() { cfg.Scaling = f.scaling })
	set("averaging", func() { cfg.Averaging = f.averaging })
	set("optimize", func() { cfg.Optimize = f.optimize })
	set("seed", func() { cfg.Seed = f.seed })
	set("timeout", func() { cfg.Timeout = f.timeout.String() })
	set("width", func() { cfg.Frame.Width = f.width })
	set("height", func() { cfg.Frame.Height = f.height })
	set("margin", func() { cfg.Frame.Margin = f.margin })
	set("no-cache", func() { cfg.Cache = !f.noCache })
	return cfg, nil
}

// options converts the effective config into pipeline options.
func (c *CLI) options(cmd *cobra.Command, f *layoutFlags) (pipeline.Options, config.Config, error) {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return pipeline.Options{}, config.Config{}, err
	}
	opts, err := pipeline.FromConfig(cfg)
	if err != nil {
		return pipeline.Options{}, config.Config{}, err
	}
	opts.Logger = c.Logger
	return opts, cfg, nil
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput returns the Newick text named by arg: a literal statement,
// a file path, or stdin for "" and "-".
func readInput(arg string, stdin io.Reader) (string, error) {
	if arg == "" || arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if isNewick(arg) {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	return string(data), nil
}

func isNewick(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "(") && strings.HasSuffix(s, ";")
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

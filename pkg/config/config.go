// Package config loads user defaults from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/phylolayout/config.toml, falling back
// to ~/.config/phylolayout/config.toml. A missing file is not an error; every
// key is optional and command-line flags take precedence over it:
//
//	layout = "circular"
//	scaling = "early"
//	averaging = "leaf"
//	optimize = true
//	seed = 7
//	timeout = "2s"
//
//	[frame]
//	width = 1024
//	height = 768
//	margin = 24
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/layout"
)

const (
	appName  = "phylolayout"
	fileName = "config.toml"
)

// Config holds user defaults.
type Config struct {
	Layout    string `toml:"layout"`
	Scaling   string `toml:"scaling"`
	Averaging string `toml:"averaging"`
	Optimize  bool   `toml:"optimize"`
	Seed      uint64 `toml:"seed"`
	Timeout   string `toml:"timeout"` // Go duration, bounds the optimiser
	Format    string `toml:"format"`  // export format
	Frame     Frame  `toml:"frame"`
	Cache     bool   `toml:"cache"`
}

// Frame is the output frame that exported coordinates are fitted into.
// A zero width or height disables fitting.
type Frame struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Margin float64 `toml:"margin"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Layout:    layout.Rectangular.String(),
		Scaling:   layout.ToScale.String(),
		Averaging: layout.ChildAverage.String(),
		Seed:      42,
		Timeout:   "5s",
		Format:    string(export.FormatJSON),
		Frame:     Frame{Width: 800, Height: 600, Margin: 20},
		Cache:     true,
	}
}

// Path returns the location of the config file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config at path on top of the defaults. A missing file
// yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks that every mode name and the timeout parse.
func (c Config) Validate() error {
	if _, err := layout.ParseLayout(c.Layout); err != nil {
		return err
	}
	if _, err := layout.ParseScaling(c.Scaling); err != nil {
		return err
	}
	if _, err := layout.ParseAveraging(c.Averaging); err != nil {
		return err
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Frame.Width < 0 || c.Frame.Height < 0 || c.Frame.Margin < 0 {
		return fmt.Errorf("frame dimensions must not be negative")
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty timeout means no limit.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative")
	}
	return d, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path, creating parent directories.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

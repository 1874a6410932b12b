// Package cache keeps computed layout documents between CLI runs.
//
// Layout of a large network with reticulation optimisation can take seconds;
// the CLI stores the serialised document under a key derived from the Newick
// input and every option that affects geometry, so rendering the same input
// twice skips the engine.
//
// [FileCache] stores entries below the user cache directory. [NullCache]
// disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts lists the options that change a layout document.
type LayoutKeyOpts struct {
	Layout    string
	Scaling   string
	Averaging string
	Optimize  bool
	Seed      uint64
	Width     float64
	Height    float64
	Margin    float64
}

// LayoutKey derives the cache key of a layout document.
func LayoutKey(newick string, opts LayoutKeyOpts) string {
	return hashKey("layout", Hash([]byte(newick)), opts)
}

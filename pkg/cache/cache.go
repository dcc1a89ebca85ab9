// Package cache stores computed layouts and rendered artifacts.
//
// # Overview
//
// Rendering a mind map is cheap for small trees but repeated renders of
// the same input (watch mode, the HTTP server) can skip the layout and the
// surfaces entirely. Entries are addressed by keys derived from content
// hashes, so a changed input or option never hits a stale entry.
//
// # Backends
//
//   - [FileCache]: one file per entry under the user cache directory
//   - [RedisCache]: shared cache for the server
//   - [NullCache]: disables caching
//
// Wrap any backend with [WithHooks] to report hits, misses and writes to
// the registered observability hooks.
//
// # Keys
//
// A [Keyer] builds keys. [DefaultKeyer] hashes the input and options;
// [ScopedKeyer] adds a prefix so several tenants can share one backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/mindtree/pkg/observability"
)

// TTLs for cached entries.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is not an
	// error: hit is false.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the layout inputs besides the tree itself.
type LayoutKeyOpts struct {
	Width         float64    `json:"w"`
	Height        float64    `json:"h"`
	Margins       [4]float64 `json:"m"`
	MinSeparation float64    `json:"sep,omitempty"`
	DepthFraction float64    `json:"df,omitempty"`
	Contour       bool       `json:"contour,omitempty"`
}

// ArtifactKeyOpts are the surface inputs besides the layout.
type ArtifactKeyOpts struct {
	Format   string   `json:"f"`
	Scale    float64  `json:"s,omitempty"`
	MinScale float64  `json:"min,omitempty"`
	MaxScale float64  `json:"max,omitempty"`
	Title    string   `json:"t,omitempty"`
	Fades    [2]int64 `json:"fades,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// NullCache never stores anything.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// WithHooks reports the traffic of c to the observability cache hooks.
// keyType labels the events, for example "layout".
func WithHooks(c Cache, keyType string) Cache {
	return &hooked{Cache: c, keyType: keyType}
}

type hooked struct {
	Cache
	keyType string
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, h.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, h.keyType)
		}
	}
	return data, hit, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := h.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, h.keyType, len(data))
	}
	return err
}

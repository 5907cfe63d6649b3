// Package cache stores regenerable pipeline results: graphs built from seeded
// runs, layouts and rendered artifacts.
//
// Everything in a cache can be recomputed from its key, so losing an entry is
// never an error. Caches hold derived bytes only; user state is not stored.
//
// # Backends
//
//   - [NullCache]: stores nothing (the default)
//   - [MemoryCache]: in-process LRU, for the HTTP server
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for several server instances
//
// [Open] builds a backend from its name.
//
// # Keys
//
// A [Keyer] derives stable keys from the inputs of each stage, hashing the
// options so any change produces a new key. [NewScopedKeyer] prefixes all
// keys, for example per server instance.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. A zero ttl means the
// entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live per stage.
const (
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options configures [Open]. Only the fields of the chosen backend are read.
type Options struct {
	Dir         string // file
	Size        int    // memory, entries
	RedisAddr   string // redis
	RedisDB     int    // redis
	RedisPrefix string // redis
}

// Open returns the cache backend with the given name.
func Open(ctx context.Context, backend string, opts Options) (Cache, error) {
	switch backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(opts.Size)
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, RedisOptions{Addr: opts.RedisAddr, DB: opts.RedisDB, Prefix: opts.RedisPrefix})
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want none, memory, file or redis)", backend)
	}
}

// GraphKeyOpts identifies a graph build. Only seeded builds are cacheable.
type GraphKeyOpts struct {
	Source    string `json:"source"`
	Seed      uint64 `json:"seed"`
	Folders   int    `json:"folders"`
	Selection string `json:"selection,omitempty"` // hash of the selected paths
	NoJitter  bool   `json:"no_jitter,omitempty"`
	NoDeps    bool   `json:"no_deps,omitempty"`
}

// LayoutKeyOpts identifies a layout run over a graph.
type LayoutKeyOpts struct {
	Mode        string  `json:"mode"`
	Strategy    string  `json:"strategy,omitempty"`
	Orphans     string  `json:"orphans,omitempty"`
	NodeWidth   float64 `json:"node_width,omitempty"`
	LevelHeight float64 `json:"level_height,omitempty"`
}

// ArtifactKeyOpts identifies a rendered output of a laid-out graph.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	NodeSize    int     `json:"node_size,omitempty"`
	NodePadding int     `json:"node_padding,omitempty"`
	EdgeStyle   string  `json:"edge_style,omitempty"`
	ColorScheme string  `json:"color_scheme,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	Highlight   string  `json:"highlight,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	GraphKey(opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "<stage>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns the key of a graph build.
func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	return stageKey(StageGraph, opts)
}

// LayoutKey returns the key of a layout of the graph with the given hash.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return stageKey(StageLayout, graphHash, opts)
}

// ArtifactKey returns the key of an artifact of the layout with the given hash.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return stageKey(StageArtifact, layoutHash, opts)
}

// Package config loads codegraph settings from defaults, an optional TOML file,
// a .env file and CODEGRAPH_* environment variables, in that order. Command
// line flags are applied last by the CLI.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// FileName is the config file looked up in the working directory when no
// path is given.
const FileName = "codegraph.toml"

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "CODEGRAPH_"

// Duration is a time.Duration written as a string ("1.5s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete codegraph configuration.
type Config struct {
	LogLevel string          `toml:"log_level"`
	Server   Server          `toml:"server"`
	Cache    Cache           `toml:"cache"`
	Build    Build           `toml:"build"`
	Layout   Layout          `toml:"layout"`
	Settings render.Settings `toml:"settings"`
}

// Server configures `codegraph serve`.
type Server struct {
	Addr            string   `toml:"addr"`
	CORSOrigins     []string `toml:"cors_origins"`
	Delay           Duration `toml:"delay"` // artificial rebuild delay
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend     string   `toml:"backend"`
	Dir         string   `toml:"dir"`
	Size        int      `toml:"size"`
	RedisAddr   string   `toml:"redis_addr"`
	RedisDB     int      `toml:"redis_db"`
	RedisPrefix string   `toml:"redis_prefix"`
	TTL         Duration `toml:"ttl"`
}

// Build holds tree synthesis and graph construction defaults.
type Build struct {
	Seed              uint64  `toml:"seed"`
	Folders           int     `toml:"folders"`
	NoJitter          bool    `toml:"no_jitter"`
	NoDeps            bool    `toml:"no_deps"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
}

// Layout holds layered layout defaults.
type Layout struct {
	Mode        string  `toml:"mode"`
	Strategy    string  `toml:"strategy"`
	Orphans     string  `toml:"orphans"`
	NodeWidth   float64 `toml:"node_width"`
	LevelHeight float64 `toml:"level_height"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Cache: Cache{
			Backend:     cache.BackendMemory,
			Size:        cache.DefaultMemorySize,
			RedisAddr:   "localhost:6379",
			RedisPrefix: cache.DefaultRedisPrefix,
		},
		Build: Build{
			Folders: tree.DefaultFolders,
		},
		Layout: Layout{
			Orphans: "append",
		},
		Settings: render.DefaultSettings(),
	}
}

// Load builds the configuration. An empty path reads FileName from the
// working directory when it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(FileName); err == nil {
			path = FileName
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("read config %s: %w", filepath.Base(path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", filepath.Base(path), strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overlays CODEGRAPH_* variables read through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *Duration) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			if err := dst.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("ADDR", &c.Server.Addr)
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	dur("DELAY", &c.Server.Delay)
	str("CACHE", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	num("CACHE_SIZE", &c.Cache.Size)
	dur("CACHE_TTL", &c.Cache.TTL)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	num("REDIS_DB", &c.Cache.RedisDB)
	str("REDIS_PREFIX", &c.Cache.RedisPrefix)
	num("FOLDERS", &c.Build.Folders)
	if v, ok := lookup(EnvPrefix + "SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Build.Seed = seed
		}
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the values that cannot be validated later by the pipeline.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if !slices.Contains([]string{"", cache.BackendNone, cache.BackendMemory, cache.BackendFile, cache.BackendRedis}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size: must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl: must not be negative")
	}
	if c.Server.Delay.Duration < 0 {
		return fmt.Errorf("server.delay: must not be negative")
	}
	if c.Build.Folders < 0 {
		return fmt.Errorf("build.folders: must not be negative")
	}
	if c.Layout.Mode != "" {
		if err := pipeline.ValidateMode(c.Layout.Mode); err != nil {
			return fmt.Errorf("layout.mode: %w", err)
		}
	}
	if c.Layout.Strategy != "" {
		if err := pipeline.ValidateStrategy(c.Layout.Strategy); err != nil {
			return fmt.Errorf("layout.strategy: %w", err)
		}
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// PipelineOptions returns the pipeline defaults described by c.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Seed:              c.Build.Seed,
		Folders:           c.Build.Folders,
		NoJitter:          c.Build.NoJitter,
		NoDeps:            c.Build.NoDeps,
		HorizontalSpacing: c.Build.HorizontalSpacing,
		VerticalSpacing:   c.Build.VerticalSpacing,
		Mode:              c.Layout.Mode,
		Strategy:          c.Layout.Strategy,
		Orphans:           c.Layout.Orphans,
		NodeWidth:         c.Layout.NodeWidth,
		LevelHeight:       c.Layout.LevelHeight,
		Settings:          c.Settings,
	}
}

// CacheOptions returns the options passed to [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Dir:         c.Cache.Dir,
		Size:        c.Cache.Size,
		RedisAddr:   c.Cache.RedisAddr,
		RedisDB:     c.Cache.RedisDB,
		RedisPrefix: c.Cache.RedisPrefix,
	}
}

// OpenRunner opens the configured cache backend and wraps it in a runner.
func (c Config) OpenRunner(ctx context.Context, logger *log.Logger) (*pipeline.Runner, error) {
	backend, err := cache.Open(ctx, c.Cache.Backend, c.CacheOptions())
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(backend, nil, logger)
	runner.TTL = c.Cache.TTL.Duration
	return runner, nil
}

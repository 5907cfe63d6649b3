package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, render.DefaultSettings(), cfg.Settings)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[server]
addr = ":9090"
cors_origins = ["http://localhost:5173"]
delay = "1500ms"

[cache]
backend = "redis"
ttl = "1h"

[build]
seed = 42
folders = 3

[layout]
mode = "layered"
strategy = "longest-path"

[settings]
node_size = 200
edge_style = "step"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 1500*time.Millisecond, cfg.Server.Delay.Duration)
	assert.Equal(t, cache.BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, uint64(42), cfg.Build.Seed)
	assert.Equal(t, 3, cfg.Build.Folders)
	assert.Equal(t, "longest-path", cfg.Layout.Strategy)

	// Unset settings keep their defaults.
	assert.Equal(t, 200, cfg.Settings.NodeSize)
	assert.Equal(t, render.EdgeStep, cfg.Settings.EdgeStyle)
	assert.Equal(t, render.DefaultSettings().ColorScheme, cfg.Settings.ColorScheme)

	opts := cfg.PipelineOptions()
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, "layered", opts.Mode)
	assert.Equal(t, 200, opts.Settings.NodeSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 80\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"backend", "[cache]\nbackend = \"s3\"\n"},
		{"level", "log_level = \"loud\"\n"},
		{"mode", "[layout]\nmode = \"radial\"\n"},
		{"settings", "[settings]\ncolor_scheme = \"neon\"\n"},
		{"delay", "[server]\ndelay = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"CODEGRAPH_ADDR":         ":7000",
		"CODEGRAPH_CORS_ORIGINS": "http://a.test, http://b.test,",
		"CODEGRAPH_CACHE":        "file",
		"CODEGRAPH_CACHE_DIR":    "/tmp/cg",
		"CODEGRAPH_CACHE_TTL":    "30m",
		"CODEGRAPH_SEED":         "7",
		"CODEGRAPH_DELAY":        "2s",
		"CODEGRAPH_REDIS_DB":     "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.Server.Delay.Duration)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, uint64(7), cfg.Build.Seed)

	copts := cfg.CacheOptions()
	assert.Equal(t, "/tmp/cg", copts.Dir)
	assert.Equal(t, 3, copts.RedisDB)
}

func TestApplyEnvReportsAllErrors(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"CODEGRAPH_SEED":       "-1",
		"CODEGRAPH_CACHE_SIZE": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CODEGRAPH_SEED")
	assert.Contains(t, err.Error(), "CODEGRAPH_CACHE_SIZE")
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	assert.Equal(t, "warn", cfg.Level().String())
	cfg.LogLevel = "bogus"
	assert.Equal(t, "info", cfg.Level().String())
}

package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/codegraph/pkg/cache"
)

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, key := range []string{"graph:a", "layout:b", "artifact:c"} {
		if err := fc.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	n, err := clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared %d entries, want 3", n)
	}
	if _, ok, _ := fc.Get(ctx, "graph:a"); ok {
		t.Error("entry survived clearCache")
	}
}

func TestClearCacheMissingDir(t *testing.T) {
	n, err := clearCache(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("clearCache: %v", err)
	}
	if n != 0 {
		t.Errorf("cleared %d entries from a missing directory", n)
	}
}

func TestFileCacheDir(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = "/tmp/explicit"
	dir, err := c.fileCacheDir()
	if err != nil || dir != "/tmp/explicit" {
		t.Errorf("fileCacheDir() = %q, %v; want the configured directory", dir, err)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	c.Config.Cache.Dir = ""
	dir, err = c.fileCacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("fileCacheDir() = %q, %v; want the XDG default", dir, err)
	}
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
		Long: `Manage the local result cache.

Seeded builds, layouts and rendered artifacts are cached on disk so repeated
runs are instant. The server may use Redis or memory instead; see
codegraph.toml.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cachePingCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			count, err := clearCache(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cachePingCommand creates the "cache ping" subcommand.
func (c *CLI) cachePingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured cache backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCachePing(cmd.Context())
		},
	}
}

func (c *CLI) runCachePing(ctx context.Context) error {
	cfg := c.Config.Cache
	if cfg.Backend == cache.BackendNone {
		printInfo("Caching is disabled")
		return nil
	}
	opts := c.Config.CacheOptions()
	if cfg.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		opts.Dir = dir
	}

	store, err := cache.Open(ctx, cfg.Backend, opts)
	if err != nil {
		printError("%s cache unavailable", cfg.Backend)
		return err
	}
	defer store.Close()

	const pingKey = "codegraph:ping"
	if err := store.Set(ctx, pingKey, []byte("ok"), 0); err != nil {
		return fmt.Errorf("write ping key: %w", err)
	}
	if _, ok, err := store.Get(ctx, pingKey); err != nil || !ok {
		return fmt.Errorf("read ping key: %v", err)
	}
	_ = store.Delete(ctx, pingKey)

	printSuccess("%s cache reachable", cfg.Backend)
	return nil
}

// fileCacheDir returns the configured file cache directory or the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if dir := c.Config.Cache.Dir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// clearCache removes every entry of the file cache in dir. A missing
// directory is an empty cache.
func clearCache(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	return fc.Clear()
}

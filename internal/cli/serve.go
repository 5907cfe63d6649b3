package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/server"
	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/workspace"
)

// serveCommand creates the serve command that exposes a workspace over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		delay  time.Duration
		warm   bool
		origin []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the workspace over HTTP",
		Long: `Serve a workspace over HTTP for a browser front end.

The API rebuilds graphs, reports the committed state, keeps the side tree and
the canvas selection in sync, applies cosmetic settings and exports CSV and
SVG. Notices are streamed on /api/events over a websocket and Prometheus
metrics are served on /metrics.

Configuration comes from codegraph.toml, .env and CODEGRAPH_* variables;
flags override both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("delay") {
				cfg.Delay.Duration = delay
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.CORSOrigins = origin
			}
			if cfg.Delay.Duration < 0 {
				return fmt.Errorf("delay must not be negative")
			}
			c.Config.Server = cfg
			return c.runServe(cmd.Context(), warm)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "artificial delay before every rebuild")
	cmd.Flags().BoolVar(&warm, "warm", false, "build the sample graph before accepting requests")
	cmd.Flags().StringSliceVar(&origin, "cors-origin", nil, "allowed CORS origins (repeatable)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, warm bool) error {
	cfg := c.Config

	runner, err := cfg.OpenRunner(ctx, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	metrics := server.NewMetrics(appName)
	metrics.Install()

	ws, err := workspace.New(workspace.Options{
		Runner:   runner,
		Logger:   c.Logger,
		Base:     c.pipelineOptions(),
		Settings: cfg.Settings,
		Delay:    cfg.Server.Delay.Duration,
	})
	if err != nil {
		return err
	}

	notices, unsubscribe := ws.Subscribe(16)
	defer unsubscribe()
	go c.logNotices(notices)

	if warm {
		snap, err := ws.Rebuild(ctx, workspace.Request{Source: pipeline.SourceSample})
		if err != nil {
			return fmt.Errorf("warm up: %w", err)
		}
		c.Logger.Info("workspace ready", "nodes", snap.Graph.NodeCount(), "generation", snap.Generation)
	}

	srv, err := server.New(server.Options{
		Workspace:   ws,
		Logger:      c.Logger,
		Metrics:     metrics,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving on %s", cfg.Server.Addr)
	printDetail("cache: %s", cfg.Cache.Backend)
	if d := cfg.Server.Delay.Duration; d > 0 {
		printDetail("rebuild delay: %s", d)
	}
	printNewline()

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration)
}

// logNotices mirrors workspace notices into the server log.
func (c *CLI) logNotices(notices <-chan workspace.Notice) {
	for n := range notices {
		switch n.Level {
		case workspace.LevelError:
			c.Logger.Error(n.Message, "code", n.Code, "generation", n.Generation)
		case workspace.LevelWarn:
			c.Logger.Warn(n.Message, "code", n.Code, "generation", n.Generation)
		default:
			c.Logger.Info(n.Message, "generation", n.Generation)
		}
	}
}

// Package server exposes a [workspace.Workspace] over HTTP.
//
// The API mirrors the interactive views: a rebuild trigger, the styled graph
// for the canvas, the side tree with search, selection sync in both
// directions, cosmetic settings, CSV export and a websocket stream of
// notices. Errors are JSON objects carrying the codegraph error code.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/codegraph/pkg/workspace"
)

// Options configures a Server.
type Options struct {
	Workspace *workspace.Workspace
	Logger    *log.Logger

	// Metrics is served on /metrics and records request metrics. Nil
	// disables both.
	Metrics *Metrics

	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty allows every origin.
	CORSOrigins []string

	// MaxRebuildDelay caps the delay_ms a client may ask for.
	MaxRebuildDelay time.Duration

	// RequestTimeout bounds every API request except the event stream.
	// Zero means MaxRebuildDelay plus requestTimeoutSlack.
	RequestTimeout time.Duration
}

// DefaultMaxRebuildDelay is used when Options.MaxRebuildDelay is zero.
const DefaultMaxRebuildDelay = 10 * time.Second

// requestTimeoutSlack leaves room for the build itself after the longest
// allowed artificial delay.
const requestTimeoutSlack = 30 * time.Second

// Server is the HTTP front end of a workspace.
type Server struct {
	ws       *workspace.Workspace
	logger   *log.Logger
	metrics  *Metrics
	origins  []string
	maxDelay time.Duration
	timeout  time.Duration
}

// New creates a server. opts.Workspace is required.
func New(opts Options) (*Server, error) {
	if opts.Workspace == nil {
		return nil, errors.New("server: workspace is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxDelay := opts.MaxRebuildDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRebuildDelay
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = maxDelay + requestTimeoutSlack
	}
	return &Server{
		ws:       opts.Workspace,
		logger:   logger,
		metrics:  opts.Metrics,
		origins:  origins,
		maxDelay: maxDelay,
		timeout:  timeout,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.timeout))
			r.Post("/rebuild", s.rebuild)
			r.Get("/state", s.state)
			r.Get("/graph", s.graph)
			r.Get("/tree", s.tree)
			r.Post("/select/{id}", s.selectNode)
			r.Delete("/select", s.clearSelection)
			r.Get("/locate", s.locate)
			r.Get("/settings", s.getSettings)
			r.Put("/settings", s.putSettings)
			r.Get("/export.csv", s.exportCSV)
			r.Get("/render.svg", s.renderSVG)
		})
		// The event stream lives as long as the client stays connected.
		r.Get("/events", s.events)
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down,
// waiting at most shutdownTimeout for open requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger logs one line per request at debug level, and failures at
// warn level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn("request failed", kv...)
				return
			}
			logger.Debug("request", kv...)
		})
	}
}

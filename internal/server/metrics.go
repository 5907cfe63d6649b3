package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/codegraph/pkg/observability"
)

// Metrics collects Prometheus metrics for the server. It implements the
// pipeline, cache and workspace hooks of package observability; call
// [Metrics.Install] to receive their events.
//
// Each Metrics has its own registry so several servers (or tests) can exist
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	graphNodes    prometheus.Histogram
	orphans       prometheus.Counter

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	rebuilds      *prometheus.CounterVec
	generation    prometheus.Gauge
	selections    *prometheus.CounterVec
	exportedRows  prometheus.Counter
	notices       *prometheus.CounterVec
	droppedNotice prometheus.Counter
}

// NewMetrics creates a collector whose metric names start with namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_errors_total",
			Help:      "Failed pipeline stages",
		}, []string{"stage"}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of built graphs",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		}),
		orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_orphans_total",
			Help:      "Nodes unreachable from any root during layered layout",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by key type",
		}, []string{"type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by key type",
		}, []string{"type"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"type"}),
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Finished rebuilds by source and outcome",
		}, []string{"source", "outcome"}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Generation of the most recently finished rebuild",
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Node selections by outcome",
		}, []string{"found"}),
		exportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_rows_total",
			Help:      "CSV rows exported",
		}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Published notices by level",
		}, []string{"level"}),
		droppedNotice: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_dropped_total",
			Help:      "Notices dropped because a subscriber buffer was full",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests, m.httpDuration,
		m.stageDuration, m.stageErrors, m.graphNodes, m.orphans,
		m.cacheHits, m.cacheMisses, m.cacheBytes,
		m.rebuilds, m.generation, m.selections, m.exportedRows,
		m.notices, m.droppedNotice,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding every metric of m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Install registers m as the global pipeline, cache and workspace hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetWorkspaceHooks(m)
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, nodeCount, _ int, d time.Duration, err error) {
	m.stage("build", d, err)
	if err == nil {
		m.graphNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, orphans int, d time.Duration, err error) {
	m.stage("layout", d, err)
	m.orphans.Add(float64(orphans))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(name).Inc()
	}
}

// =============================================================================
// Cache Hooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// Workspace Hooks
// =============================================================================

func (m *Metrics) OnRebuild(_ context.Context, source string, generation uint64, stale bool, _ time.Duration, err error) {
	outcome := "committed"
	switch {
	case stale:
		outcome = "stale"
	case err != nil:
		outcome = "failed"
	default:
		m.generation.Set(float64(generation))
	}
	m.rebuilds.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) OnSelect(_ context.Context, found bool) {
	m.selections.WithLabelValues(strconv.FormatBool(found)).Inc()
}

func (m *Metrics) OnExport(_ context.Context, rows int, err error) {
	if err == nil {
		m.exportedRows.Add(float64(rows))
	}
}

func (m *Metrics) OnNotice(_ context.Context, level string, dropped int) {
	m.notices.WithLabelValues(level).Inc()
	m.droppedNotice.Add(float64(dropped))
}

var (
	_ observability.PipelineHooks  = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.WorkspaceHooks = (*Metrics)(nil)
)

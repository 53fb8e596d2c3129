// Package metrics provides Prometheus metrics for the transit catalogue.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route query outcomes, used as the "result" label of RouteQueriesTotal.
const (
	RouteFound    = "found"
	RouteNotFound = "not_found"
	RouteError    = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Search index connection pool metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	// Catalogue and routing metrics
	CatalogueStops         prometheus.Gauge
	CatalogueBuses         prometheus.Gauge
	RouteGraphBuildSeconds prometheus.Histogram
	RouteGraphEdges        prometheus.Gauge
	RouteQueriesTotal      *prometheus.CounterVec

	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		logger:   logger,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transit_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_db_connections_open",
			Help: "Number of open search index connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_db_connections_in_use",
			Help: "Number of search index connections currently in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_db_connections_idle",
			Help: "Number of idle search index connections",
		}),
		DBWaitSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_db_wait_seconds_total",
			Help: "Total time blocked waiting for a search index connection",
		}),

		CatalogueStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_catalogue_stops",
			Help: "Number of stops in the loaded catalogue",
		}),
		CatalogueBuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_catalogue_buses",
			Help: "Number of buses in the loaded catalogue",
		}),
		RouteGraphBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transit_route_graph_build_seconds",
			Help:    "Time spent building the routing graph",
			Buckets: prometheus.DefBuckets,
		}),
		RouteGraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_route_graph_edges",
			Help: "Number of edges in the routing graph",
		}),
		RouteQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_route_queries_total",
				Help: "Total number of route queries by outcome",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitSecondsTotal,
		m.CatalogueStops,
		m.CatalogueBuses,
		m.RouteGraphBuildSeconds,
		m.RouteGraphEdges,
		m.RouteQueriesTotal,
	)

	return m
}

// GraphBuilt records a completed routing graph build.
func (m *Metrics) GraphBuilt(elapsed time.Duration, edges int) {
	m.RouteGraphBuildSeconds.Observe(elapsed.Seconds())
	m.RouteGraphEdges.Set(float64(edges))
}

// RouteQueried counts a route query by its outcome.
func (m *Metrics) RouteQueried(result string) {
	m.RouteQueriesTotal.WithLabelValues(result).Inc()
}

// CatalogueLoaded records the size of a freshly loaded catalogue.
func (m *Metrics) CatalogueLoaded(stops, buses int) {
	m.CatalogueStops.Set(float64(stops))
	m.CatalogueBuses.Set(float64(buses))
}

// StartDBStatsCollector starts a goroutine that periodically copies the
// connection pool statistics of db into the DB gauges. It is idempotent;
// call Shutdown to stop it.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	var lastWaitDuration time.Duration

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.recordDBStats(db.Stats(), &lastWaitDuration)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Metrics) recordDBStats(stats sql.DBStats, lastWait *time.Duration) {
	m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DBConnectionsInUse.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))

	if delta := stats.WaitDuration - *lastWait; delta > 0 {
		m.DBWaitSecondsTotal.Add(delta.Seconds())
	}
	*lastWait = stats.WaitDuration
}

// Shutdown stops the DB stats collector goroutine and waits for it to exit.
// It is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

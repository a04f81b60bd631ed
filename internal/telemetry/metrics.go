// Package telemetry provides application-level observability for the
// FindSoupNearMe backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started in cmd/server:
//
//	GET http(s)://<host>:<FSN_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint returns the Prometheus text exposition
// format and is intended to be scraped every 15–60 seconds. It is NOT served
// by the Gin router, keeping the scrape path off the public ingress and away
// from the rate-limiting middleware.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Claim decision counters (approved / denied)
//   - Import pipeline per-record result counters
//   - Restaurant search counters
//   - Data-quality gauges refreshed by the background data-quality job
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as
// /api/v1/restaurants/:id/soups) rather than the raw request URL so that
// user-supplied path segments like restaurant ids never inflate cardinality.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Domain metrics.
//
// ClaimDecisionsTotal counts resolved ownership claims by decision
// ("approved" | "denied"). Incremented only after the resolving transaction
// commits, so the counter never runs ahead of the database.
//
// ImportRecordsTotal counts importer outcomes per record with
// result ∈ {"imported", "failed"}; soups are counted separately under
// ImportSoupsTotal because one record can produce several soup rows.
//
// RestaurantSearchesTotal counts public directory searches; useful for
// understanding which deployments actually get browse traffic.
var (
	ClaimDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_decisions_total",
			Help: "Total number of ownership claims resolved, by decision.",
		},
		[]string{"decision"},
	)

	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Total number of restaurant records processed by the import pipeline, by result.",
		},
		[]string{"result"},
	)

	ImportSoupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_soups_total",
			Help: "Total number of soup rows written (or failed) by the import pipeline, by result.",
		},
		[]string{"result"},
	)

	RestaurantSearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaurant_searches_total",
			Help: "Total number of public restaurant search requests served.",
		},
	)
)

// Data-quality gauges, set by the background data-quality job
// (internal/jobs). A non-zero duplicate or orphan gauge is an operator
// signal that the imported dataset needs cleaning.
var (
	DuplicateSlugsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_duplicate_slugs",
			Help: "Number of restaurant slugs shared by more than one restaurant row.",
		},
	)

	OrphanSoupsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_orphan_soups",
			Help: "Number of soup rows whose restaurant_id has no matching restaurant.",
		},
	)

	SoupCoverageGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_soup_coverage_ratio",
			Help: "Fraction of restaurants with at least one soup row (0..1).",
		},
	)
)

// DBConnectionsOpen tracks the database/sql pool's open connection count.
var DBConnectionsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Current number of open database connections (in use + idle).",
	},
)

// StartDBStatsCollector polls db.Stats() every 30 seconds and exports the
// open-connection count. The goroutine runs for the life of the process;
// there is one pool per process so no stop mechanism is needed.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			DBConnectionsOpen.Set(float64(stats.OpenConnections))
			slog.Debug("db pool stats",
				"open", stats.OpenConnections,
				"in_use", stats.InUse,
				"idle", stats.Idle,
				"wait_count", stats.WaitCount,
			)
		}
	}()
}

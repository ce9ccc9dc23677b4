package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "feeder_"

	resultSuccess = "success"
	resultEmpty   = "empty"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	reconcileTotal   *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec

	categoryFailures *prometheus.CounterVec

	collectRuns     *prometheus.CounterVec
	collectDuration prometheus.Histogram
)

// Init registers feeder metrics and, when db is set, DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total ENTSO-E requests by document type and result",
			},
			[]string{"document", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "ENTSO-E request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"document", "result"},
		)

		reconcileTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_total",
				Help: "Total reconciliations by kind and result",
			},
			[]string{"kind", "result"},
		)
		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Fetch and reconcile latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		categoryFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "category_failures_total",
				Help: "Generation categories left out of a snapshot",
			},
			[]string{"category"},
		)

		collectRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "collect_runs_total",
				Help: "Scheduled collection runs by result",
			},
			[]string{"result"},
		)
		collectDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "collect_duration_seconds",
				Help:    "Scheduled collection run duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		)

		prometheus.MustRegister(
			upstreamRequests,
			upstreamLatency,
			reconcileTotal,
			reconcileLatency,
			categoryFailures,
			collectRuns,
			collectDuration,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveUpstream records an ENTSO-E request.
func ObserveUpstream(document, result string, duration time.Duration) {
	if document == "" {
		document = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(document, result).Inc()
	}
	if upstreamLatency != nil {
		upstreamLatency.WithLabelValues(document, result).Observe(duration.Seconds())
	}
}

// ObserveReconcile records one fetch-and-reconcile of a record kind.
func ObserveReconcile(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reconcileTotal != nil {
		reconcileTotal.WithLabelValues(kind, result).Inc()
	}
	if reconcileLatency != nil {
		reconcileLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// IncCategoryFailure counts a category dropped from a snapshot.
func IncCategoryFailure(category string) {
	if category == "" {
		category = "unknown"
	}
	if categoryFailures != nil {
		categoryFailures.WithLabelValues(category).Inc()
	}
}

// ObserveCollectRun records a scheduled collection run.
func ObserveCollectRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if collectRuns != nil {
		collectRuns.WithLabelValues(result).Inc()
	}
	if collectDuration != nil {
		collectDuration.Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultEmpty   = resultEmpty
	ResultError   = resultError
)

// Package metrics exposes Prometheus collectors for the forecast service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheRequestsTotal         *prometheus.CounterVec
	fetchesTotal               *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	flightJoinsTotal           prometheus.Counter
	persistFailuresTotal       prometheus.Counter
	snapshotLocations          prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		cacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronostico_cache_requests_total",
				Help: "Total cache consultations, labeled by outcome and reason.",
			},
			[]string{"outcome", "reason"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronostico_fetches_total",
				Help: "Total fetch pipeline runs, labeled by mode and status.",
			},
			[]string{"mode", "status"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pronostico_fetch_duration_seconds",
				Help:    "Histogram of fetch pipeline durations, labeled by mode.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 90},
			},
			[]string{"mode"},
		)

		flightJoinsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pronostico_flight_joins_total",
				Help: "Total callers that attached to an already in-flight fetch.",
			},
		)

		persistFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pronostico_persist_failures_total",
				Help: "Total snapshot persist failures after a successful fetch.",
			},
		)

		snapshotLocations = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pronostico_snapshot_locations",
				Help: "Location count of the last successful snapshot.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCacheRequest increments the cache consultation counter.
func ObserveCacheRequest(outcome, reason string) {
	cacheRequestsTotal.WithLabelValues(outcome, reason).Inc()
}

// ObserveFetch records one fetch pipeline run.
func ObserveFetch(mode, status string, duration time.Duration) {
	fetchesTotal.WithLabelValues(mode, status).Inc()
	fetchDurationSeconds.WithLabelValues(mode).Observe(duration.Seconds())
}

// ObserveFlightJoin counts a caller that shared an in-flight fetch.
func ObserveFlightJoin() {
	flightJoinsTotal.Inc()
}

// ObservePersistFailure counts a failed snapshot save.
func ObservePersistFailure() {
	persistFailuresTotal.Inc()
}

// SetSnapshotLocations records the size of the last successful snapshot.
func SetSnapshotLocations(n int) {
	snapshotLocations.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Package metrics exposes Prometheus metrics for the campus manager service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the metric collectors and their registry
type Manager struct {
	registry *prometheus.Registry

	computationsTotal   prometheus.Counter
	computationErrors   prometheus.Counter
	computationDuration prometheus.Histogram
	studentsRanked      prometheus.Gauge
	rowsSkipped         prometheus.Counter
	fallbackLookups     prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Manager with all collectors registered on a fresh registry
func New() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		computationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "computations_total",
			Help:      "Number of distribution computations attempted.",
		}),
		computationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "computation_errors_total",
			Help:      "Number of distribution computations that failed.",
		}),
		computationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "campus",
			Name:      "computation_duration_seconds",
			Help:      "Duration of distribution computations.",
			Buckets:   prometheus.DefBuckets,
		}),
		studentsRanked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "campus",
			Name:      "students_ranked",
			Help:      "Number of students in the most recent ranking.",
		}),
		rowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "rows_skipped_total",
			Help:      "Number of student rows skipped for failing validation.",
		}),
		fallbackLookups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "weight_fallback_lookups_total",
			Help:      "Number of students resolved to the default weight profile.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveComputation records one computation attempt
func (m *Manager) ObserveComputation(duration time.Duration, err error) {
	m.computationsTotal.Inc()
	if err != nil {
		m.computationErrors.Inc()
		return
	}
	m.computationDuration.Observe(duration.Seconds())
}

// RecordRanking records the outcome of a successful computation
func (m *Manager) RecordRanking(ranked, skipped, fallbacks int) {
	m.studentsRanked.Set(float64(ranked))
	m.rowsSkipped.Add(float64(skipped))
	m.fallbackLookups.Add(float64(fallbacks))
}

// ObserveHTTPRequest records one handled HTTP request
func (m *Manager) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

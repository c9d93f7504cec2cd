// Package metrics holds the Prometheus collectors of the dispatch service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dispatch"

// Metrics owns a registry so tests and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal       *prometheus.CounterVec
	dispatchDuration    prometheus.Histogram
	commitConflicts     prometheus.Counter
	locationsResolved   *prometheus.CounterVec
	locationLookup      prometheus.Histogram
	staleReleased       prometheus.Counter
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Dispatch requests by outcome.",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from request to committed assignment or failure.",
			Buckets:   prometheus.DefBuckets,
		}),
		commitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_conflicts_total",
			Help:      "Conditional inserts rejected because the rider became busy.",
		}),
		locationsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_resolved_total",
			Help:      "Rider location lookups by provenance.",
		}, []string{"source"}),
		locationLookup: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "location_lookup_duration_seconds",
			Help:      "Latency of geolocation provider calls, including failed ones.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}),
		staleReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_assignments_released_total",
			Help:      "Assignments cancelled because the rider never started them.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.dispatchTotal,
		m.dispatchDuration,
		m.commitConflicts,
		m.locationsResolved,
		m.locationLookup,
		m.staleReleased,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDispatch records one dispatch request.
func (m *Metrics) ObserveDispatch(outcome string, elapsed time.Duration) {
	m.dispatchTotal.WithLabelValues(outcome).Inc()
	m.dispatchDuration.Observe(elapsed.Seconds())
}

// ObserveCommitConflict records a lost race for a rider.
func (m *Metrics) ObserveCommitConflict() {
	m.commitConflicts.Inc()
}

// ObserveLocation records a resolved location and the provider latency.
func (m *Metrics) ObserveLocation(source string, elapsed time.Duration) {
	m.locationsResolved.WithLabelValues(source).Inc()
	m.locationLookup.Observe(elapsed.Seconds())
}

// ObserveReleased records cancelled stale assignments.
func (m *Metrics) ObserveReleased(n int) {
	m.staleReleased.Add(float64(n))
}

// ObserveHTTP records one served request. path must be the route pattern, not the raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// Package metrics exposes Prometheus instrumentation for the file server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry, so tests can
// create as many instances as they like without duplicate-registration
// panics.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	bytesUploaded    prometheus.Counter
	bytesDownloaded  prometheus.Counter
	searchDuration   prometheus.Histogram
	authAttempts     *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileharbor_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileharbor_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileharbor_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		bytesUploaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fileharbor_storage_bytes_uploaded_total",
				Help: "Total bytes written to storage by uploads",
			},
		),
		bytesDownloaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fileharbor_storage_bytes_downloaded_total",
				Help: "Total bytes served from storage by downloads",
			},
		),
		searchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fileharbor_search_duration_seconds",
				Help:    "Filename search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileharbor_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BytesUploaded implements the storage transfer recorder.
func (m *Metrics) BytesUploaded(n int64) {
	m.bytesUploaded.Add(float64(n))
}

// BytesDownloaded implements the storage transfer recorder.
func (m *Metrics) BytesDownloaded(n int64) {
	m.bytesDownloaded.Add(float64(n))
}

// RecordSearch records a search duration.
func (m *Metrics) RecordSearch(duration time.Duration) {
	m.searchDuration.Observe(duration.Seconds())
}

// RecordAuthAttempt records a login attempt outcome.
func (m *Metrics) RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.authAttempts.WithLabelValues(result).Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records per-request counters and latencies. The path label uses
// the chi route pattern rather than the raw URL so file paths don't explode
// the label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

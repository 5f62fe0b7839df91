// Package metrics exposes Prometheus metrics for HTTP traffic and domain events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry so tests can create independent instances.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	booksDeleted prometheus.Counter
	starToggles  *prometheus.CounterVec
	pageUploads  prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		booksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kanine_books_deleted_total",
			Help: "Books deleted together with their notes, stars and files.",
		}),
		starToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kanine_star_toggles_total",
			Help: "Star toggles by resulting state.",
		}, []string{"result"}),
		pageUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kanine_page_uploads_total",
			Help: "Page files stored or replaced.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.booksDeleted,
		m.starToggles,
		m.pageUploads,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency labeled with the matched chi
// route pattern, which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// BookDeleted counts a completed book deletion.
func (m *Metrics) BookDeleted() {
	if m == nil {
		return
	}
	m.booksDeleted.Inc()
}

// StarToggled counts a star toggle by its resulting state.
func (m *Metrics) StarToggled(starred bool) {
	if m == nil {
		return
	}
	result := "unstarred"
	if starred {
		result = "starred"
	}
	m.starToggles.WithLabelValues(result).Inc()
}

// PageUploaded counts a stored page file.
func (m *Metrics) PageUploaded() {
	if m == nil {
		return
	}
	m.pageUploads.Inc()
}

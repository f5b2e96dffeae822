// Package metrics exposes Prometheus collectors for the HTTP and GraphQL layers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create independent instances
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	graphqlErrors *prometheus.CounterVec
	imagesSwept   prometheus.Counter
}

// New registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blog",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		graphqlErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "graphql_errors_total",
			Help:      "GraphQL errors by reported code.",
		}, []string{"code"}),
		imagesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "images_swept_total",
			Help:      "Orphaned image files removed by the sweeper.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.graphqlErrors,
		m.imagesSwept,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveGraphQLError records an error returned to a GraphQL client
func (m *Metrics) ObserveGraphQLError(code int) {
	m.graphqlErrors.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveSwept records removed orphan images
func (m *Metrics) ObserveSwept(n int) {
	m.imagesSwept.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

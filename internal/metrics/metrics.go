// Package metrics exposes Prometheus collectors for the dashboard: inbound
// HTTP traffic, upstream API calls and the query cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	upstreamCalls *prometheus.CounterVec
	upstreamTime  *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	superseded    prometheus.Counter
}

// New registers all collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admindash",
			Name:      "http_requests_total",
			Help:      "Dashboard HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "admindash",
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admindash",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the admin API by method, route template and status class.",
		}, []string{"method", "route", "status"}),
		upstreamTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "admindash",
			Name:      "upstream_request_duration_seconds",
			Help:      "Admin API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admindash",
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by result (hit, miss).",
		}, []string{"result"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admindash",
			Name:      "fetch_superseded_total",
			Help:      "In-flight fetches cancelled because a newer request replaced them.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.upstreamCalls, m.upstreamTime,
		m.cacheLookups, m.superseded,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served dashboard request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveUpstream records one admin API call. route is the path with ids
// replaced, e.g. /api/admin/users/{id}/role. status is a class such as
// "2xx", or "network_error" and "canceled" when no response arrived.
func (m *Metrics) ObserveUpstream(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(method, route, status).Inc()
	m.upstreamTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StatusClass returns "2xx", "4xx" and so on for an HTTP status code.
func StatusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// CacheHit and CacheMiss count query cache lookups.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// Superseded counts a fetch cancelled by a newer one.
func (m *Metrics) Superseded() {
	if m != nil {
		m.superseded.Inc()
	}
}

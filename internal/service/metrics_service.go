package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "portal"

// MetricsService owns the Prometheus registry of the portal. Every method is
// safe on a nil receiver.
type MetricsService struct {
	registry      *prometheus.Registry
	handler       http.Handler
	httpDuration  *prometheus.HistogramVec
	httpTotal     *prometheus.CounterVec
	upstream      *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	cacheLatency  *prometheus.HistogramVec
	cacheWrites   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// NewMetricsService registers the portal collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of portal HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Portal HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		// generation renders documents synchronously and may run for minutes
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of calls to the convocation service.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"operation", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "refdata_cache_lookups_total",
			Help:      "Reference cache lookups by kind and outcome.",
		}, []string{"kind", "result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "refdata_cache_lookup_seconds",
			Help:      "Latency of reference cache lookups.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"kind"}),
		cacheWrites: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "refdata_cache_write_seconds",
			Help:      "Latency of reference cache writes.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_notifications_total",
			Help:      "Notifications raised by the workflow stages.",
		}, []string{"level"}),
	}

	m.registry.MustRegister(
		m.httpDuration, m.httpTotal, m.upstream,
		m.cacheLookups, m.cacheLatency, m.cacheWrites, m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the scrape handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one portal request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, route, code).Inc()
}

// ObserveUpstreamRequest records the latency of a convocation service call.
func (m *MetricsService) ObserveUpstreamRequest(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// CountNotification tracks toasts by severity.
func (m *MetricsService) CountNotification(level string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(level).Inc()
}

// RecordCacheLookup records a reference cache lookup for kind.
func (m *MetricsService) RecordCacheLookup(kind string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
	m.cacheLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveCacheWrite records a reference cache write for kind.
func (m *MetricsService) ObserveCacheWrite(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(kind).Observe(duration.Seconds())
}

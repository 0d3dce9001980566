package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	attendanceEvents     *prometheus.CounterVec
	alertsPublishedTotal *prometheus.CounterVec
	alertSubscribers     prometheus.Gauge
	cacheRequestsTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		attendanceEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_events_total",
			Help: "Clock transitions recorded per attendance module.",
		}, []string{"module", "action"})

		alertsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_published_total",
			Help: "Alerts broadcast to live subscribers.",
		}, []string{"severity"})

		alertSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alert_stream_clients_active",
			Help: "Websocket clients currently subscribed to the alert stream.",
		})

		cacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			attendanceEvents,
			alertsPublishedTotal,
			alertSubscribers,
			cacheRequestsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AttendanceEvents counts clock transitions.
func AttendanceEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return attendanceEvents
}

// AlertsPublished counts alerts delivered to the live stream.
func AlertsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return alertsPublishedTotal
}

// AlertSubscribers tracks connected alert stream clients.
func AlertSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return alertSubscribers
}

// CacheRequests counts cache hits and misses.
func CacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheRequestsTotal
}

package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	StoreErrorsTotal       *prometheus.CounterVec

	// Session metrics
	SessionCacheHitsTotal   prometheus.Counter
	SessionCacheMissesTotal prometheus.Counter
	SessionsActive          prometheus.Gauge

	// Business metrics
	AccountsTotal   prometheus.Gauge
	StaffTotal      prometheus.Gauge
	SuperusersTotal prometheus.Gauge
	RecordsTotal    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_store_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"entity", "operation"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsdesk_store_operation_duration_seconds",
				Help:    "Store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_store_errors_total",
				Help: "Total number of store operation errors",
			},
			[]string{"entity", "operation"},
		),
		SessionCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "opsdesk_session_cache_hits_total",
				Help: "Total number of session cache hits",
			},
		),
		SessionCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "opsdesk_session_cache_misses_total",
				Help: "Total number of session cache misses",
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsdesk_sessions_active",
				Help: "Number of unexpired sessions",
			},
		),
		AccountsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsdesk_accounts_total",
				Help: "Total number of accounts",
			},
		),
		StaffTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsdesk_staff_accounts_total",
				Help: "Number of accounts with staff access",
			},
		),
		SuperusersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsdesk_superuser_accounts_total",
				Help: "Number of superuser accounts",
			},
		),
		RecordsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsdesk_records_total",
				Help: "Total number of records",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
		m.StoreErrorsTotal,
		m.SessionCacheHitsTotal,
		m.SessionCacheMissesTotal,
		m.SessionsActive,
		m.AccountsTotal,
		m.StaffTotal,
		m.SuperusersTotal,
		m.RecordsTotal,
	)

	return m
}

// Handler returns an http.Handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStoreOperation records a store operation with its duration and outcome
func (m *Metrics) ObserveStoreOperation(entity, operation string, start time.Time, err error) {
	m.StoreOperationsTotal.WithLabelValues(entity, operation).Inc()
	m.StoreOperationDuration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StoreErrorsTotal.WithLabelValues(entity, operation).Inc()
	}
}

// HTTPMiddleware instruments an HTTP handler with request metrics.
// The path label uses the route template, not the raw URL, to bound cardinality.
func (m *Metrics) HTTPMiddleware(routePath func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routePath(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

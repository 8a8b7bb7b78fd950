package telemetry

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AppMetrics is safe to call on a nil receiver; tests and the CLI run
// without a registry.
type AppMetrics struct {
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	activeConnections prometheus.Gauge
	memoryUsage       prometheus.Gauge
	goroutines        prometheus.Gauge
	userOperations    *prometheus.CounterVec
	todoOperations    *prometheus.CounterVec
	storeOperations   *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	rateLimitHits     *prometheus.CounterVec
	rateLimitAllowed  *prometheus.CounterVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		memoryUsage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
		),
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goroutines_total",
				Help: "Number of goroutines",
			},
		),
		userOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_operations_total",
				Help: "Total number of user directory operations",
			},
			[]string{"operation"},
		),
		todoOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_operations_total",
				Help: "Total number of todo operations",
			},
			[]string{"operation", "result"},
		),
		storeOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kv_store_operations_total",
				Help: "Total number of key-value store operations",
			},
			[]string{"driver", "operation"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "view_sessions_active",
				Help: "Number of open directory view sessions",
			},
		),
		rateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"path", "key_type"},
		),
		rateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_allowed_total",
				Help: "Total number of requests allowed by rate limiter",
			},
			[]string{"path", "key_type"},
		),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeConnections,
		metrics.memoryUsage,
		metrics.goroutines,
		metrics.userOperations,
		metrics.todoOperations,
		metrics.storeOperations,
		metrics.activeSessions,
		metrics.rateLimitHits,
		metrics.rateLimitAllowed,
	)

	return metrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *AppMetrics) IncrementActiveConnections(ctx context.Context) {
	if m == nil {
		return
	}

	m.activeConnections.Inc()
}

func (m *AppMetrics) DecrementActiveConnections(ctx context.Context) {
	if m == nil {
		return
	}

	m.activeConnections.Dec()
}

func (m *AppMetrics) RecordUserOperation(ctx context.Context, operation string) {
	if m == nil {
		return
	}

	m.userOperations.WithLabelValues(operation).Inc()
}

func (m *AppMetrics) RecordTodoOperation(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	m.todoOperations.WithLabelValues(operation, result).Inc()
}

func (m *AppMetrics) RecordStoreOperation(ctx context.Context, driver, operation string) {
	if m == nil {
		return
	}

	m.storeOperations.WithLabelValues(driver, operation).Inc()
}

func (m *AppMetrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}

	m.activeSessions.Set(float64(count))
}

func (m *AppMetrics) RecordRateLimitHit(ctx context.Context, path, keyType string) {
	if m == nil {
		return
	}

	m.rateLimitHits.WithLabelValues(path, keyType).Inc()
}

func (m *AppMetrics) RecordRateLimitAllowed(ctx context.Context, path, keyType string) {
	if m == nil {
		return
	}

	m.rateLimitAllowed.WithLabelValues(path, keyType).Inc()
}

func (m *AppMetrics) StartSystemMetrics(ctx context.Context) {
	if m == nil {
		return
	}

	ticker := time.NewTicker(10 * time.Second)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				var memStats runtime.MemStats
				runtime.ReadMemStats(&memStats)
				m.memoryUsage.Set(float64(memStats.Alloc))

				m.goroutines.Set(float64(runtime.NumGoroutine()))

			case <-ctx.Done():
				return
			}
		}
	}()
}

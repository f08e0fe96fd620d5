package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

// Report outcomes recorded by ObserveReport.
const (
	ReportOutcomeGenerated = "generated"
	ReportOutcomeEmpty     = "empty"
	ReportOutcomeNotReady  = "not_ready"
	ReportOutcomeFailed    = "failed"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the settings view.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	backendDuration   *prometheus.HistogramVec
	backendTotal      *prometheus.CounterVec
	sessionTransition *prometheus.CounterVec
	reportTotal       *prometheus.CounterVec
	reportDuration    *prometheus.HistogramVec

	requestCount         uint64
	requestDurationTotal uint64
	backendCount         uint64
	backendFailures      uint64
	backendDurationTotal uint64
	reportsGenerated     uint64
	reportsRejected      uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of console HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of console HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of analytics backend calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	backendTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Analytics backend calls by operation and status (0 = network failure)",
	}, []string{"operation", "status"})

	sessionTransition := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_transitions_total",
		Help: "Session state transitions by target state",
	}, []string{"state"})

	reportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Report export attempts by format and outcome",
	}, []string{"format", "outcome"})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_export_duration_seconds",
		Help:    "Time to render and store a report",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, backendTotal, sessionTransition, reportTotal, reportDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		backendDuration:   backendDuration,
		backendTotal:      backendTotal,
		sessionTransition: sessionTransition,
		reportTotal:       reportTotal,
		reportDuration:    reportDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records console request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBackendRequest records one analytics backend call.
func (m *MetricsService) ObserveBackendRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.backendTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	atomic.AddUint64(&m.backendCount, 1)
	atomic.AddUint64(&m.backendDurationTotal, uint64(duration.Nanoseconds()))
	if status == 0 || status >= http.StatusInternalServerError {
		atomic.AddUint64(&m.backendFailures, 1)
	}
}

// ObserveSessionTransition counts a session state change.
func (m *MetricsService) ObserveSessionTransition(state models.SessionState) {
	if m == nil {
		return
	}
	m.sessionTransition.WithLabelValues(string(state)).Inc()
}

// ObserveReport records a report export attempt.
func (m *MetricsService) ObserveReport(format models.ReportFormat, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportTotal.WithLabelValues(string(format), outcome).Inc()
	if outcome == ReportOutcomeGenerated {
		m.reportDuration.WithLabelValues(string(format)).Observe(duration.Seconds())
		atomic.AddUint64(&m.reportsGenerated, 1)
		return
	}
	atomic.AddUint64(&m.reportsRejected, 1)
}

// Snapshot returns aggregated metrics suitable for the settings view.
func (m *MetricsService) Snapshot() models.ConsoleMetrics {
	if m == nil {
		return models.ConsoleMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	backend := atomic.LoadUint64(&m.backendCount)
	backendDuration := atomic.LoadUint64(&m.backendDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgBackendMs float64
	if backend > 0 {
		avgBackendMs = float64(backendDuration) / float64(backend) / float64(time.Millisecond)
	}

	return models.ConsoleMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		BackendCalls:             backend,
		BackendFailures:          atomic.LoadUint64(&m.backendFailures),
		AverageBackendLatencyMs:  avgBackendMs,
		ReportsGenerated:         atomic.LoadUint64(&m.reportsGenerated),
		ReportsRejected:          atomic.LoadUint64(&m.reportsRejected),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

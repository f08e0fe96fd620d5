package models

import "time"

// ConsoleMetrics is a lightweight snapshot of console instrumentation.
type ConsoleMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	BackendCalls             uint64    `json:"backend_calls"`
	BackendFailures          uint64    `json:"backend_failures"`
	AverageBackendLatencyMs  float64   `json:"average_backend_latency_ms"`
	ReportsGenerated         uint64    `json:"reports_generated"`
	ReportsRejected          uint64    `json:"reports_rejected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

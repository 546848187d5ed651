package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReportsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_created_total",
			Help: "Reports created by variant",
		},
		[]string{"variant"},
	)

	ReportTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_transitions_total",
			Help: "Lifecycle transitions by variant and event",
		},
		[]string{"variant", "event"},
	)

	DocnumRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_number_retries_total",
			Help: "Document number allocations retried after a unique constraint collision",
		},
	)

	PDFRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_rendered_total",
			Help: "PDFs rendered by variant and cache outcome",
		},
		[]string{"variant", "cache"},
	)
)

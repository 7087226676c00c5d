// Package metrics exposes Prometheus collectors for the Sentinel Console.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts API façade calls by handler and outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_api_requests_total",
			Help: "Total number of API requests by handler and outcome",
		},
		[]string{"handler", "outcome"},
	)

	// AuditWriteFailures counts audit-trail writes that failed after the
	// primary operation succeeded. The primary response is not affected.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_audit_write_failures_total",
			Help: "Total number of failed audit log writes",
		},
	)

	// PurgedLogEntries counts audit entries removed by retention sweeps
	PurgedLogEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_purged_log_entries_total",
			Help: "Total number of audit log entries removed by retention",
		},
	)
)

// Package metrics defines Prometheus metrics for the customers service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Customer update outcomes.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oms_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	CustomerUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_customer_updates_total",
			Help: "Customer update submissions by outcome",
		},
		[]string{"outcome"},
	)

	AuditWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "oms_audit_write_failures_total",
			Help: "Audit log inserts that failed and were skipped",
		},
	)

	CityLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_city_lookups_total",
			Help: "City autocomplete lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal,
		CustomerUpdates, AuditWriteFailures, CityLookups,
	)
}

// ObserveRequest records one finished HTTP request. route is the registered
// pattern (e.g. /customers/:id), never the raw path.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	RequestDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
	RequestsTotal.WithLabelValues(method, route, code).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure|needs_verification).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shof_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks sessions that are neither expired nor revoked.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shof_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// EmailDeliveries counts outbound email attempts by outcome (sent|retried|failed).
	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shof_email_deliveries_total",
			Help: "Total number of outbound email delivery attempts",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shof_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login/register attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dineqr_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// VerificationCodes counts one-time code lifecycle events (issued|consumed|rejected).
	VerificationCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dineqr_verification_codes_total",
			Help: "Total number of verification code events",
		},
		[]string{"event"},
	)

	// MenuViews counts public menu page loads.
	MenuViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dineqr_menu_views_total",
			Help: "Total number of public menu views",
		},
	)

	// QRRendered counts generated QR code images.
	QRRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dineqr_qr_rendered_total",
			Help: "Total number of rendered QR codes",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dineqr_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

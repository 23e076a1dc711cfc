package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound calls to the payment provider.
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razorpay_api_requests_total",
			Help: "Total number of Razorpay API requests (by endpoint and status).",
		},
		[]string{"endpoint", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "razorpay_api_request_duration_seconds",
			Help:    "Duration of Razorpay API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms → ~20s
		},
		[]string{"endpoint"},
	)

	// Terminal outcomes of purchase attempts.
	CheckoutOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_outcomes_total",
			Help: "Purchase attempts by terminal state and failure reason.",
		},
		[]string{"state", "reason"},
	)

	EntitlementWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_writes_total",
			Help: "Entitlement record attempts by result.",
		},
		[]string{"result"}, // created | duplicate | error
	)

	AccessResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_resolutions_total",
			Help: "Access gate decisions by result.",
		},
		[]string{"result"}, // locked | unlocked | unavailable | error
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook events by type and result.",
		},
		[]string{"event", "result"},
	)
)

// ObserveProviderCall records count and latency of one provider request.
func ObserveProviderCall(endpoint, status string, start time.Time) {
	ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

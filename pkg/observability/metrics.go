package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound PSP call metrics
	pspRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psp_requests_total",
			Help: "Total number of outbound PSP requests",
		},
		[]string{"operation", "status"},
	)

	pspRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "psp_request_duration_seconds",
			Help:    "Duration of outbound PSP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Webhook processing metrics
	webhookItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_items_total",
			Help: "Webhook notifications processed, by outcome",
		},
		[]string{"outcome"},
	)

	// Inbound HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of inbound HTTP requests",
		},
		[]string{"route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// ObservePSPRequest records one outbound PSP call.
func ObservePSPRequest(operation string, statusCode int, duration time.Duration) {
	pspRequestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	pspRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// CountWebhookItem records the outcome of one webhook notification:
// "refunded", "skipped", "duplicate" or "failed".
func CountWebhookItem(outcome string) {
	webhookItemsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one inbound HTTP request.
func ObserveHTTPRequest(route string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

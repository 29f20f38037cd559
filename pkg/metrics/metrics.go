// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebhookEventsTotal tracks inbound Umbler webhook events by type and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umbler_webhook_events_total",
			Help: "Total Umbler webhook events received",
		},
		[]string{"event_type", "outcome"},
	)

	// MessagesTotal tracks classified chat messages.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umbler_messages_total",
			Help: "Total chat messages classified by sender type",
		},
		[]string{"sender_type"},
	)

	// ResponseTimeSeconds tracks accepted agent response times.
	ResponseTimeSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "umbler_response_time_seconds",
			Help:    "Agent response time to customer messages",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600, 7200, 14400, 28800},
		},
		[]string{"mode"},
	)

	// ResponseTimesDiscarded tracks response times rejected by the acceptance policy.
	ResponseTimesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "umbler_response_times_discarded_total",
			Help: "Response times discarded as non-positive or too long",
		},
	)

	// TagChangesTotal tracks tag additions and removals applied to conversations.
	TagChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umbler_tag_changes_total",
			Help: "Total conversation tag mutations",
		},
		[]string{"action"},
	)

	// ChatClosuresTotal tracks conversations closed, by detection source.
	ChatClosuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umbler_chat_closures_total",
			Help: "Total conversations closed",
		},
		[]string{"source"},
	)

	// EventsPublishedTotal tracks conversation events published to NATS.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umbler_events_published_total",
			Help: "Conversation events published to the event stream",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordWebhookEvent records the outcome of one webhook event.
func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordResponseTime records an accepted response time.
func RecordResponseTime(mode string, seconds int64) {
	ResponseTimeSeconds.WithLabelValues(mode).Observe(float64(seconds))
}

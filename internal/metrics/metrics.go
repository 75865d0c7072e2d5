package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "events_published_total",
		Help:      "Events published to the bus, by event type.",
	}, []string{"type"})

	webhookAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "webhook_attempts_total",
		Help:      "Individual webhook delivery attempts, by outcome.",
	}, []string{"outcome"})

	webhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "webhook_deliveries_total",
		Help:      "Completed webhook deliveries, by outcome.",
	}, []string{"outcome"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "notifications_total",
		Help:      "Notifications processed, by channel and final status.",
	}, []string{"channel", "status"})

	pushMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "push_messages_total",
		Help:      "Live push messages sent, by delivery mode.",
	}, []string{"mode"})

	pushConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventrelay",
		Name:      "push_connections",
		Help:      "Currently connected live push users.",
	})

	archiveEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrelay",
		Name:      "archive_events_total",
		Help:      "Events handled by the archive observer, by outcome.",
	}, []string{"outcome"})
)

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func EventPublished(eventType string) {
	eventsPublished.WithLabelValues(orUnknown(eventType)).Inc()
}

func WebhookAttempt(outcome string) {
	webhookAttempts.WithLabelValues(orUnknown(outcome)).Inc()
}

func WebhookDelivery(outcome string) {
	webhookDeliveries.WithLabelValues(orUnknown(outcome)).Inc()
}

func NotificationProcessed(channel, status string) {
	notifications.WithLabelValues(orUnknown(channel), orUnknown(status)).Inc()
}

func PushMessage(mode string) {
	pushMessages.WithLabelValues(orUnknown(mode)).Inc()
}

func SetPushConnections(n int) {
	pushConnections.Set(float64(n))
}

func ArchiveEvents(outcome string, count int) {
	archiveEvents.WithLabelValues(orUnknown(outcome)).Add(float64(count))
}

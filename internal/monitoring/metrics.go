package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets issued, labelled by confirmation path",
		},
		[]string{"source"},
	)

	ticketUnitsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_units_issued_total",
			Help: "Ticket units (quantity) issued, labelled by confirmation path",
		},
		[]string{"source"},
	)

	issuanceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_issuance_failures_total",
			Help: "Issuance attempts rejected, labelled by reason",
		},
		[]string{"reason"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Check-in attempts, labelled by outcome",
		},
		[]string{"status"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Payment webhook deliveries, labelled by event type and outcome",
		},
		[]string{"event", "status"},
	)
)

func TicketIssued(source string, quantity int) {
	if source == "" {
		source = "unknown"
	}
	ticketsIssued.WithLabelValues(source).Inc()
	ticketUnitsIssued.WithLabelValues(source).Add(float64(quantity))
}

func IssuanceFailed(reason string) {
	issuanceFailures.WithLabelValues(reason).Inc()
}

func CheckIn(status string) {
	checkIns.WithLabelValues(status).Inc()
}

func WebhookEvent(event, status string) {
	webhookEvents.WithLabelValues(event, status).Inc()
}

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		webhookEventsTotal,
		entitlementFailuresTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Orders recorded by payment status (completed/failed/refunded).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Total monetary value of completed payments in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook deliveries by reconcile result (created/already_processed/entitlement_failed/rejected).",
		},
		[]string{"result"},
	)

	entitlementFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlement_grant_failures_total",
			Help: "Completed orders whose entitlement grant failed and needs manual remediation.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncWebhookEvent(result string) {
	webhookEventsTotal.WithLabelValues(norm(result)).Inc()
}

func IncEntitlementFailure() {
	entitlementFailuresTotal.Inc()
}

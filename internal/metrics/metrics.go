package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Checkout session attempts by result.",
	}, []string{"result"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Payment webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	ShippingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipping_fallbacks_total",
		Help:      "Shipping quotes resolved to the default cost, by reason.",
	}, []string{"reason"})

	CarrierFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "carrier_fallbacks_total",
		Help:      "Carrier calls answered by the simulated path, by reason.",
	}, []string{"reason"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notifications that could not be delivered, by kind.",
	}, []string{"kind"})
)

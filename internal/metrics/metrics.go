package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "orders_placed_total",
		Help:      "Orders committed at checkout.",
	})

	CheckoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "checkout_failures_total",
		Help:      "Checkouts rejected, by reason.",
	}, []string{"reason"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "order_status_transitions_total",
		Help:      "Order status changes, by target status.",
	}, []string{"status"})

	EmergencyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "emergency_requests_total",
		Help:      "Emergency delivery requests, by urgency.",
	}, []string{"urgency"})

	PartnerReservationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "partner_reservation_conflicts_total",
		Help:      "Partner reservations lost to a concurrent assignment.",
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apotek",
		Name:      "push_notifications_total",
		Help:      "Push notification attempts, by outcome.",
	}, []string{"outcome"})
)

// Checkout failure reasons.
const (
	ReasonEmptyCart   = "empty_cart"
	ReasonUnavailable = "unavailable"
	ReasonError       = "error"
)

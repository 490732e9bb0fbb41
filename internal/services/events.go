package services

import (
	"github.com/rs/zerolog/log"
)

// Routing keys of published domain events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventEmergencyCreated   = "emergency.created"
)

// EventPublisher publishes a domain event. Implemented by the RabbitMQ client.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// publish sends an event after commit. Failures are logged and dropped.
func publish(p EventPublisher, routingKey string, payload interface{}) {
	if p == nil {
		log.Debug().Str("event", routingKey).Msg("Event publisher is not configured. Skipping event publication.")
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Warn().Err(err).Str("event", routingKey).Msg("Failed to publish event")
	}
}

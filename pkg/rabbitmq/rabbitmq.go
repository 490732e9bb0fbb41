package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// ErrPermanentFailure marks a message that must not be redelivered.
var ErrPermanentFailure = errors.New("permanent failure processing message")

// BindingKeys are the routing patterns the event queue listens on.
var BindingKeys = []string{"order.*", "emergency.*"}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ and declares the topic exchange and the
// durable event queue bound to it.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		cfg:     cfg,
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	for _, key := range BindingKeys {
		if err := ch.QueueBind(cfg.Queue, key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to %s: %w", cfg.Queue, key, err)
		}
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish marshals payload to JSON and publishes it on the events exchange
// under routingKey as a persistent message.
func (c *Client) Publish(routingKey string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		c.cfg.Exchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}

	log.Debug().Str("routing_key", routingKey).Int("bytes", len(body)).Msg("event published")
	return nil
}

// ConsumeEvents starts a goroutine delivering messages from the event queue to
// handler. Successful messages are acked; failures are requeued unless the
// handler returns ErrPermanentFailure.
func (c *Client) ConsumeEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", c.cfg.Queue).Msg("waiting for events")

	go func() {
		for msg := range msgs {
			settle(msg, handler(msg))
		}
		log.Info().Str("queue", c.cfg.Queue).Msg("event consumer stopped")
	}()

	return nil
}

func settle(msg amqp.Delivery, err error) {
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Uint64("tag", msg.DeliveryTag).Msg("failed to ack message")
		}
		return
	}

	requeue := !errors.Is(err, ErrPermanentFailure)
	log.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Bool("requeue", requeue).Msg("error processing message")
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		log.Error().Err(nackErr).Uint64("tag", msg.DeliveryTag).Msg("failed to nack message")
	}
}

// HandleEventMessage writes every order and emergency event to the audit log.
// Bodies that are not JSON objects are rejected permanently.
func HandleEventMessage(msg amqp.Delivery) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(msg.Body, &fields); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermanentFailure, msg.RoutingKey, err)
	}

	ev := log.Info().Str("routing_key", msg.RoutingKey).Time("published_at", msg.Timestamp)
	for _, key := range []string{"order_id", "request_id", "user_id", "status", "previous_status", "urgency"} {
		if v, ok := fields[key]; ok {
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg("audit event")
	return nil
}

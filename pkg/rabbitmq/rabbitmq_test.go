package rabbitmq

import (
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type recordingAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.acked = true
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	r.nacked = true
	r.requeue = requeue
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestHandleEventMessage(t *testing.T) {
	t.Run("order event", func(t *testing.T) {
		msg := amqp.Delivery{
			RoutingKey: "order.created",
			Body:       []byte(`{"order_id":"abc","status":"pending","total_amount":12.5}`),
		}
		assert.NoError(t, HandleEventMessage(msg))
	})

	t.Run("malformed body is permanent", func(t *testing.T) {
		msg := amqp.Delivery{RoutingKey: "order.created", Body: []byte("not json")}
		err := HandleEventMessage(msg)
		assert.ErrorIs(t, err, ErrPermanentFailure)
	})
}

func TestSettle(t *testing.T) {
	t.Run("success acks", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		settle(amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}, nil)
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("transient failure requeues", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		settle(amqp.Delivery{Acknowledger: ack, DeliveryTag: 2}, errors.New("db down"))
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	t.Run("permanent failure drops", func(t *testing.T) {
		ack := &recordingAcknowledger{}
		settle(amqp.Delivery{Acknowledger: ack, DeliveryTag: 3}, ErrPermanentFailure)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Publish("order.created", map[string]string{"order_id": "x"}))
}

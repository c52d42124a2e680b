package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shygul22/foodiempt-sub001/models"
)

type fakeChannel struct {
	declared   string
	declareErr error
	publishErr error
	routingKey string
	published  []amqp.Publishing
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = name
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.routingKey = key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishOrder(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewOrderPublisher(ch, "food-queue")
	require.NoError(t, err)
	assert.Equal(t, "food-queue", ch.declared)

	order := models.Order{
		ID:           "o-1",
		CustomerID:   "alice",
		RestaurantID: "r1",
		TotalAmount:  decimal.RequireFromString("120.5"),
		DeliveryFee:  25,
		Status:       models.OrderStatusPending,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, pub.PublishOrder(order))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "food-queue", ch.routingKey)
	assert.Equal(t, "o-1", msg.MessageId)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)

	var decoded models.Order
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "alice", decoded.CustomerID)
	assert.True(t, order.TotalAmount.Equal(decoded.TotalAmount))

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestPublishOrderErrors(t *testing.T) {
	_, err := NewOrderPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "food-queue")
	assert.Error(t, err)

	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	pub, err := NewOrderPublisher(ch, "food-queue")
	require.NoError(t, err)
	assert.ErrorIs(t, pub.PublishOrder(models.Order{ID: "o-2"}), amqp.ErrClosed)
}

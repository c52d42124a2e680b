// Package dispatch assigns queued orders to the nearest free courier.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/delivery"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/models"
)

const OrderAssigned = "order_assigned"

var ErrNoCourier = errors.New("no available couriers")

type RestaurantLocator interface {
	Restaurant(ctx context.Context, id string) (catalog.Restaurant, error)
}

type CourierPool interface {
	Couriers(ctx context.Context) ([]models.Courier, error)
	AssignOrder(ctx context.Context, courierID string, order models.Order) error
}

type Assignment struct {
	OrderID    string  `json:"order_id"`
	CourierID  string  `json:"courier_id"`
	DistanceKm float64 `json:"distance_km"`
}

type Dispatcher struct {
	restaurants RestaurantLocator
	couriers    CourierPool
	events      events.Publisher
	topic       string
	log         *logrus.Entry
}

func NewDispatcher(restaurants RestaurantLocator, couriers CourierPool, pub events.Publisher, topic string, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		restaurants: restaurants,
		couriers:    couriers,
		events:      pub,
		topic:       topic,
		log:         log,
	}
}

// Assign hands the order to the free courier closest to its restaurant.
func (d *Dispatcher) Assign(ctx context.Context, order models.Order) (Assignment, error) {
	r, err := d.restaurants.Restaurant(ctx, order.RestaurantID)
	if err != nil {
		return Assignment{}, err
	}

	couriers, err := d.couriers.Couriers(ctx)
	if err != nil {
		return Assignment{}, err
	}
	courier, ok := delivery.NearestCourier(r.Location, couriers)
	if !ok {
		return Assignment{}, ErrNoCourier
	}

	if err := d.couriers.AssignOrder(ctx, courier.ID, order); err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		OrderID:    order.ID,
		CourierID:  courier.ID,
		DistanceKm: delivery.DistanceKm(r.Location, courier.Location),
	}
	events.Emit(d.events, d.topic, map[string]interface{}{
		"event":      OrderAssigned,
		"order_id":   a.OrderID,
		"courier_id": a.CourierID,
	}, d.log)
	return a, nil
}

// Acknowledger is the part of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Handle decodes one queued order and settles it: acked once assigned,
// requeued when no courier is free, dropped when unreadable.
func (d *Dispatcher) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	var order models.Order
	if err := json.Unmarshal(body, &order); err != nil {
		d.log.WithError(err).Error("Failed to parse order")
		settle(d.log, ack.Nack(false, false))
		return
	}
	log := d.log.WithField("order_id", order.ID)

	a, err := d.Assign(ctx, order)
	switch {
	case err == nil:
		log.WithField("courier_id", a.CourierID).Info("Order assigned")
		settle(log, ack.Ack(false))
	case errors.Is(err, ErrNoCourier):
		log.Warn("No available couriers, requeueing")
		settle(log, ack.Nack(false, true))
	default:
		log.WithError(err).Error("Error assigning order")
		settle(log, ack.Nack(false, !errors.Is(err, catalog.ErrRestaurantNotFound)))
	}
}

func settle(log *logrus.Entry, err error) {
	if err != nil {
		log.WithError(err).Warn("Failed to settle message")
	}
}

// Consume assigns orders from queueName until ctx is done or the channel closes.
func (d *Dispatcher) Consume(ctx context.Context, ch *amqp.Channel, queueName string, retryDelay time.Duration) error {
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "declare queue %s", queueName)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return pkgerrors.Wrap(err, "set qos")
	}

	msgs, err := ch.Consume(q.Name, "dispatcher", false, false, false, false, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "register consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			d.Handle(ctx, msg.Body, &delayedAck{d: msg, delay: retryDelay})
		}
	}
}

// delayedAck waits before requeueing so an empty courier pool is not polled in a hot loop.
type delayedAck struct {
	d     amqp.Delivery
	delay time.Duration
}

func (a *delayedAck) Ack(multiple bool) error {
	return a.d.Ack(multiple)
}

func (a *delayedAck) Nack(multiple, requeue bool) error {
	if requeue {
		time.Sleep(a.delay)
	}
	return a.d.Nack(multiple, requeue)
}

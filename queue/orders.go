// Package queue hands placed orders to the kitchen and dispatch workers over RabbitMQ.
package queue

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/Shygul22/foodiempt-sub001/models"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type OrderPublisher struct {
	ch    Channel
	queue string
}

// NewOrderPublisher declares the durable order queue on ch.
func NewOrderPublisher(ch Channel, queueName string) (*OrderPublisher, error) {
	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "declare queue %s", queueName)
	}
	return &OrderPublisher{ch: ch, queue: q.Name}, nil
}

func (p *OrderPublisher) PublishOrder(order models.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "encode order")
	}

	err = p.ch.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.ID,
			Timestamp:    order.CreatedAt,
			Body:         body,
		},
	)
	return errors.Wrapf(err, "publish order %s", order.ID)
}

func (p *OrderPublisher) Close() error {
	return p.ch.Close()
}

// Dial connects to RabbitMQ, retrying a few times while the broker starts.
func Dial(url string, attempts int, log *logrus.Entry) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		log.Infof("Attempting to connect to RabbitMQ (attempt %d/%d)...", i+1, attempts)
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if i < attempts-1 {
			log.WithError(err).Warn("Failed to connect to RabbitMQ, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
	return nil, errors.Wrapf(err, "failed to connect to RabbitMQ after %d attempts", attempts)
}

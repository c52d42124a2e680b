// Package events writes cart and order events to the Kafka event log.
package events

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/metrics"
)

const (
	CartItemAdded   = "cart_item_added"
	CartItemRemoved = "cart_item_removed"
	CartQuantitySet = "cart_quantity_updated"
	CartCleared     = "cart_cleared"
	OrderCreated    = "order_created"
	OrderDelivered  = "order_delivered"
)

type Publisher interface {
	Publish(topic string, event map[string]interface{}) error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish stamps the event with a unix timestamp and sends it synchronously.
func (p *KafkaPublisher) Publish(topic string, event map[string]interface{}) error {
	event["timestamp"] = time.Now().Unix()
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(data),
	}
	if name, ok := event["event"].(string); ok {
		msg.Key = sarama.StringEncoder(name)
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return errors.Wrapf(err, "send to %s", topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(string, map[string]interface{}) error { return nil }

// Emit publishes and only logs failures; the event log never blocks a request.
func Emit(pub Publisher, topic string, event map[string]interface{}, log *logrus.Entry) {
	if err := pub.Publish(topic, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(topic).Inc()
		log.WithError(err).WithField("event", event["event"]).Warn("failed to log event")
	}
}

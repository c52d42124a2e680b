// Command dispatcher consumes placed orders and hands each to the nearest free courier.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/config"
	"github.com/Shygul22/foodiempt-sub001/dispatch"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/queue"
	"github.com/Shygul22/foodiempt-sub001/storage"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "dispatcher")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	if cfg.RabbitMQ.URL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	rdb, err := storage.ConnectRedis(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.MaxRetries, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to redis")
	}
	defer rdb.Close()

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer kafka.Close()
		pub = kafka
	}

	conn, err := queue.Dial(cfg.RabbitMQ.URL, 5, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Fatal("Failed to open channel")
	}
	defer ch.Close()

	// Requeued orders go out on their own channel
	pubCh, err := conn.Channel()
	if err != nil {
		log.WithError(err).Fatal("Failed to open channel")
	}
	requeue, err := queue.NewOrderPublisher(pubCh, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.WithError(err).Fatal("Failed to declare order queue")
	}
	defer requeue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	couriers := catalog.NewRedisCatalog(rdb)
	d := dispatch.NewDispatcher(couriers, couriers, pub, cfg.Kafka.Topic, log)

	watchdog := dispatch.NewWatchdog(couriers, requeue, pub, cfg.Kafka.Topic, cfg.Dispatch.CourierTimeout, log.WithField("component", "watchdog"))
	go watchdog.Run(ctx, cfg.Dispatch.SweepInterval)

	log.Infof("Consuming orders from %s", cfg.RabbitMQ.QueueName)
	if err := d.Consume(ctx, ch, cfg.RabbitMQ.QueueName, cfg.Dispatch.RetryDelay); err != nil && err != context.Canceled {
		log.WithError(err).Error("Consumer stopped")
	}
}

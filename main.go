package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/cart"
	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/checkout"
	"github.com/Shygul22/foodiempt-sub001/config"
	_ "github.com/Shygul22/foodiempt-sub001/docs"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/favourites"
	"github.com/Shygul22/foodiempt-sub001/handlers"
	"github.com/Shygul22/foodiempt-sub001/metrics"
	"github.com/Shygul22/foodiempt-sub001/queue"
	"github.com/Shygul22/foodiempt-sub001/reviews"
	"github.com/Shygul22/foodiempt-sub001/storage"
)

// @title Foodie Cart API
// @version 1.0
// @description Cart, checkout, reviews and delivery estimates for the Foodie app
// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "cart")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
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

	cartStorage, err := newCartStorage(cfg, rdb)
	if err != nil {
		log.WithError(err).Fatal("Failed to open cart storage")
	}
	carts := cart.NewRegistry(cartStorage, cfg.Cart.Name, log.WithField("component", "cart"))
	restaurants := catalog.NewRedisCatalog(rdb)

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer kafka.Close()
		pub = kafka
	}

	var checkoutSvc *checkout.Service
	if cfg.RabbitMQ.URL != "" {
		conn, err := queue.Dial(cfg.RabbitMQ.URL, 5, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.WithError(err).Fatal("Failed to open channel")
		}
		orders, err := queue.NewOrderPublisher(ch, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.WithError(err).Fatal("Failed to declare order queue")
		}
		defer orders.Close()

		checkoutSvc = checkout.NewService(restaurants, orders, pub, cfg.Kafka.Topic, log.WithField("component", "checkout"))
	} else {
		log.Warn("RABBITMQ_URL not set, checkout disabled")
	}

	srv := handlers.NewServer(handlers.Options{
		Carts:      carts,
		Checkout:   checkoutSvc,
		Catalog:    restaurants,
		Couriers:   restaurants,
		Favourites: favourites.NewStore(rdb),
		Reviews:    reviews.NewStore(rdb),
		Events:     pub,
		Topic:      cfg.Kafka.Topic,
		Auth:       handlers.NewAuthenticator(cfg.JWT.SecretKey),
		Log:        log.WithField("component", "http"),
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middlewares
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	srv.SetupRoutes(app)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Infof("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Error("Server stopped")
	}
}

func newCartStorage(cfg *config.Config, rdb *redis.Client) (storage.Storage, error) {
	switch cfg.Cart.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "file":
		return storage.NewFileStorage(cfg.Cart.Dir)
	default:
		return storage.NewRedisStorage(rdb, cfg.Cart.RedisTTL), nil
	}
}

package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodie_cart_mutations_total",
		Help: "Cart mutations by operation",
	}, []string{"operation"})

	CartPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodie_cart_persist_failures_total",
		Help: "Cart writes to storage that failed and were dropped",
	})

	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodie_orders_placed_total",
		Help: "The total number of orders placed from carts",
	})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodie_event_publish_failures_total",
		Help: "Events that could not be written to the event log",
	}, []string{"topic"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodie_http_request_duration_seconds",
		Help:    "Time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		requestDuration.
			WithLabelValues(c.Method(), c.Route().Path).
			Observe(time.Since(start).Seconds())

		return err
	}
}

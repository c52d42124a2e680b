package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/models"
)

const CourierTimeout = "courier_timeout"

// StalePool finds busy couriers that went quiet and frees them.
type StalePool interface {
	StaleCouriers(ctx context.Context, cutoff time.Time) ([]string, error)
	ReleaseCourier(ctx context.Context, courierID string) (models.Order, bool, error)
}

// OrderQueue puts an order back in line for dispatch.
type OrderQueue interface {
	PublishOrder(order models.Order) error
}

// Watchdog frees couriers that stopped reporting while carrying an order and
// queues that order again.
type Watchdog struct {
	couriers StalePool
	orders   OrderQueue
	events   events.Publisher
	topic    string
	maxAge   time.Duration
	log      *logrus.Entry
	now      func() time.Time
}

func NewWatchdog(couriers StalePool, orders OrderQueue, pub events.Publisher, topic string, maxAge time.Duration, log *logrus.Entry) *Watchdog {
	return &Watchdog{
		couriers: couriers,
		orders:   orders,
		events:   pub,
		topic:    topic,
		maxAge:   maxAge,
		log:      log,
		now:      time.Now,
	}
}

// Sweep releases every stale courier once and returns how many it freed.
func (w *Watchdog) Sweep(ctx context.Context) int {
	stale, err := w.couriers.StaleCouriers(ctx, w.now().Add(-w.maxAge))
	if err != nil {
		w.log.WithError(err).Error("Failed to list couriers")
		return 0
	}

	freed := 0
	for _, id := range stale {
		if w.timeout(ctx, id) {
			freed++
		}
	}
	return freed
}

func (w *Watchdog) timeout(ctx context.Context, courierID string) bool {
	log := w.log.WithField("courier_id", courierID)

	order, ok, err := w.couriers.ReleaseCourier(ctx, courierID)
	if err != nil {
		log.WithError(err).Error("Failed to reset courier status")
		return false
	}

	event := map[string]interface{}{
		"event":      CourierTimeout,
		"courier_id": courierID,
	}
	if ok {
		event["order_id"] = order.ID
		if err := w.orders.PublishOrder(order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Error("Failed to return order to queue")
		}
	}
	events.Emit(w.events, w.topic, event, log)

	log.Warn("Courier timed out")
	return true
}

// Run sweeps every interval until ctx is done.
func (w *Watchdog) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

package dispatch

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/models"
)

type queued struct {
	orders []models.Order
	err    error
}

func (q *queued) PublishOrder(order models.Order) error {
	if q.err != nil {
		return q.err
	}
	q.orders = append(q.orders, order)
	return nil
}

func newWatchdog(t *testing.T) (*Watchdog, *catalog.RedisCatalog, *miniredis.Miniredis, *queued, *recorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	l := logrus.New()
	l.SetOutput(io.Discard)

	couriers := catalog.NewRedisCatalog(rdb)
	q := &queued{}
	rec := &recorder{}
	return NewWatchdog(couriers, q, rec, "food_orders", 5*time.Minute, logrus.NewEntry(l)), couriers, mr, q, rec
}

func TestWatchdogRequeuesOrderOfSilentCourier(t *testing.T) {
	w, couriers, mr, q, rec := newWatchdog(t)
	ctx := context.Background()

	require.NoError(t, couriers.UpdateCourier(ctx, models.Courier{ID: "c1", Available: true}))
	require.NoError(t, couriers.AssignOrder(ctx, "c1", models.Order{ID: "o-1", RestaurantID: "r1"}))
	require.NoError(t, couriers.UpdateCourier(ctx, models.Courier{ID: "c2", Available: true}))
	require.NoError(t, couriers.AssignOrder(ctx, "c2", models.Order{ID: "o-2", RestaurantID: "r1"}))

	// c2 keeps reporting, c1 went quiet ten minutes ago
	mr.HSet("courier:c1", "last_update", strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10))
	require.NoError(t, couriers.UpdateCourierLocation(ctx, "c2", models.Coordinate{Latitude: 1, Longitude: 1}))

	assert.Equal(t, 1, w.Sweep(ctx))

	require.Len(t, q.orders, 1)
	assert.Equal(t, "o-1", q.orders[0].ID)
	require.Len(t, rec.events, 1)
	assert.Equal(t, CourierTimeout, rec.events[0]["event"])
	assert.Equal(t, "c1", rec.events[0]["courier_id"])
	assert.Equal(t, "o-1", rec.events[0]["order_id"])

	available := map[string]bool{}
	list, err := couriers.Couriers(ctx)
	require.NoError(t, err)
	for _, c := range list {
		available[c.ID] = c.Available
	}
	assert.True(t, available["c1"])
	assert.False(t, available["c2"])

	// Already freed, nothing left to do
	assert.Equal(t, 0, w.Sweep(ctx))
	assert.Len(t, q.orders, 1)
}

func TestWatchdogFreesCourierEvenWhenRequeueFails(t *testing.T) {
	w, couriers, mr, q, rec := newWatchdog(t)
	ctx := context.Background()
	q.err = errors.New("channel closed")

	require.NoError(t, couriers.AssignOrder(ctx, "c1", models.Order{ID: "o-1"}))
	w.now = func() time.Time { return time.Now().Add(time.Hour) }

	assert.Equal(t, 1, w.Sweep(ctx))
	assert.Equal(t, "false", mr.HGet("courier:c1", "is_busy"))
	assert.Len(t, rec.events, 1)
}

func TestWatchdogRunStopsWithContext(t *testing.T) {
	w, _, _, _, _ := newWatchdog(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shygul22/foodiempt-sub001/cart"
	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/delivery"
	"github.com/Shygul22/foodiempt-sub001/models"
	"github.com/Shygul22/foodiempt-sub001/schedule"
	"github.com/Shygul22/foodiempt-sub001/storage"
)

type fakeLocator map[string]catalog.Restaurant

func (f fakeLocator) Restaurant(_ context.Context, id string) (catalog.Restaurant, error) {
	r, ok := f[id]
	if !ok {
		return catalog.Restaurant{}, catalog.ErrRestaurantNotFound
	}
	return r, nil
}

type fakeQueue struct {
	orders []models.Order
	err    error
	// during runs while the order is in flight.
	during func()
}

func (f *fakeQueue) PublishOrder(order models.Order) error {
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

type recordingPublisher struct {
	events []map[string]interface{}
}

func (r *recordingPublisher) Publish(_ string, event map[string]interface{}) error {
	r.events = append(r.events, event)
	return nil
}

var (
	restaurantLoc = models.Coordinate{Latitude: 0, Longitude: 0}
	customerLoc   = models.Coordinate{Latitude: 0, Longitude: 0.03} // ~3.3 km
	fixedNow      = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
)

func setup(t *testing.T, open bool) (*Service, *cart.Store, *fakeQueue, *recordingPublisher) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	q := &fakeQueue{}
	pub := &recordingPublisher{}
	locator := fakeLocator{"r1": {ID: "r1", Name: "Udupi", Location: restaurantLoc, IsOpen: open}}

	svc := NewService(locator, q, pub, "food_orders", log)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "order-1" }

	c := cart.NewStore(storage.NewMemoryStorage(), cart.DefaultName, log)
	return svc, c, q, pub
}

func item(id, price string) models.MenuItem {
	return models.MenuItem{ID: id, Name: id, Price: decimal.RequireFromString(price), RestaurantID: "r1", IsAvailable: true}
}

func request() Request {
	return Request{
		CustomerID:    "alice",
		Address:       models.Address{Location: customerLoc, Street: "12 MG Road"},
		PaymentMethod: models.PaymentCOD,
	}
}

func TestCheckout(t *testing.T) {
	svc, c, q, pub := setup(t, true)
	c.AddItem(item("dosa", "60.5"), "r1")
	c.AddItem(item("dosa", "60.5"), "r1")
	c.AddItem(item("chai", "15"), "r1")

	order, err := svc.Checkout(context.Background(), c, request())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "alice", order.CustomerID)
	assert.Equal(t, "r1", order.RestaurantID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "136", order.TotalAmount.String())
	assert.Equal(t, delivery.DeliveryFee(delivery.DistanceKm(restaurantLoc, customerLoc)), order.DeliveryFee)
	assert.Equal(t, 35, order.DeliveryFee)
	assert.Equal(t, string(delivery.ETA20To30), order.DeliveryInfo.EstimatedTime)
	assert.False(t, order.IsScheduled)
	assert.Equal(t, fixedNow, order.CreatedAt)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "dosa", order.Items[0].MenuItemID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	require.Len(t, q.orders, 1)
	assert.Equal(t, order.ID, q.orders[0].ID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "order_created", pub.events[0]["event"])

	assert.True(t, c.Snapshot().Empty())
}

func TestCheckoutScheduled(t *testing.T) {
	svc, c, q, _ := setup(t, false)
	c.AddItem(item("dosa", "60"), "r1")

	req := request()
	day := fixedNow.AddDate(0, 0, 1)
	req.ScheduleDay = &day
	req.ScheduleSlot = "19:30"

	order, err := svc.Checkout(context.Background(), c, req)
	require.NoError(t, err)
	require.NotNil(t, order.ScheduledAt)
	assert.True(t, order.IsScheduled)
	assert.Equal(t, time.Date(2026, 5, 2, 19, 30, 0, 0, time.UTC), *order.ScheduledAt)
	assert.Len(t, q.orders, 1)
}

func TestCheckoutRejections(t *testing.T) {
	past := fixedNow.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		open    bool
		fill    func(c *cart.Store)
		mutate  func(r *Request)
		wantErr error
	}{
		{
			name:    "empty cart",
			open:    true,
			fill:    func(*cart.Store) {},
			wantErr: ErrEmptyCart,
		},
		{
			name:    "bad payment",
			open:    true,
			mutate:  func(r *Request) { r.PaymentMethod = "card" },
			wantErr: ErrInvalidPayment,
		},
		{
			name:    "closed restaurant",
			open:    false,
			wantErr: ErrRestaurantClosed,
		},
		{
			name: "unknown restaurant",
			open: true,
			fill: func(c *cart.Store) {
				c.AddItem(models.MenuItem{ID: "x", Price: decimal.NewFromInt(1), IsAvailable: true}, "ghost")
			},
			wantErr: catalog.ErrRestaurantNotFound,
		},
		{
			name: "unavailable item",
			open: true,
			fill: func(c *cart.Store) {
				c.AddItem(models.MenuItem{ID: "x", Price: decimal.NewFromInt(1), RestaurantID: "r1"}, "r1")
			},
			wantErr: ErrItemUnavailable,
		},
		{
			name: "schedule in the past",
			open: true,
			mutate: func(r *Request) {
				r.ScheduleDay = &past
				r.ScheduleSlot = "12:00"
			},
			wantErr: schedule.ErrInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, c, q, _ := setup(t, tt.open)
			if tt.fill != nil {
				tt.fill(c)
			} else {
				c.AddItem(item("dosa", "60"), "r1")
			}
			req := request()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			before := c.Snapshot()

			_, err := svc.Checkout(context.Background(), c, req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, q.orders)
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestCheckoutQueueFailureKeepsCart(t *testing.T) {
	svc, c, q, pub := setup(t, true)
	q.err = errors.New("channel closed")
	c.AddItem(item("dosa", "60"), "r1")

	_, err := svc.Checkout(context.Background(), c, request())
	assert.Error(t, err)
	assert.Equal(t, 1, c.TotalItems())
	assert.Empty(t, pub.events)
}

func TestCheckoutKeepsItemsAddedMeanwhile(t *testing.T) {
	svc, c, q, _ := setup(t, true)
	c.AddItem(item("dosa", "60"), "r1")
	q.during = func() {
		c.AddItem(item("chai", "15"), "r1")
		c.AddItem(item("dosa", "60"), "r1")
	}

	order, err := svc.Checkout(context.Background(), c, request())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)

	state := c.Snapshot()
	assert.Equal(t, "r1", state.RestaurantID)
	require.Len(t, state.Lines, 2)
	assert.Equal(t, "dosa", state.Lines[0].Item.ID)
	assert.Equal(t, 1, state.Lines[0].Quantity)
	assert.Equal(t, "chai", state.Lines[1].Item.ID)
	assert.Equal(t, 1, state.Lines[1].Quantity)
}

func TestCheckoutLeavesSwitchedCart(t *testing.T) {
	svc, c, q, _ := setup(t, true)
	c.AddItem(item("dosa", "60"), "r1")
	q.during = func() {
		c.AddItem(models.MenuItem{ID: "pizza", Price: decimal.NewFromInt(300), RestaurantID: "r2", IsAvailable: true}, "r2")
	}

	_, err := svc.Checkout(context.Background(), c, request())
	require.NoError(t, err)

	state := c.Snapshot()
	assert.Equal(t, "r2", state.RestaurantID)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, "pizza", state.Lines[0].Item.ID)
}

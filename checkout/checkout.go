// Package checkout turns a customer's cart into a placed order.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/cart"
	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/delivery"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/metrics"
	"github.com/Shygul22/foodiempt-sub001/models"
	"github.com/Shygul22/foodiempt-sub001/schedule"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidPayment   = errors.New("unsupported payment method")
	ErrRestaurantClosed = errors.New("restaurant is not accepting orders")
	ErrItemUnavailable  = errors.New("an item in the cart is no longer available")
)

type RestaurantLocator interface {
	Restaurant(ctx context.Context, id string) (catalog.Restaurant, error)
}

type OrderQueue interface {
	PublishOrder(order models.Order) error
}

type Request struct {
	CustomerID    string
	Address       models.Address
	PaymentMethod models.PaymentMethod
	Notes         string
	// ScheduleDay and ScheduleSlot are both set for a scheduled delivery.
	ScheduleDay   *time.Time
	ScheduleSlot  string
}

type Service struct {
	restaurants RestaurantLocator
	orders      OrderQueue
	events      events.Publisher
	topic       string
	log         *logrus.Entry

	now   func() time.Time
	newID func() string
}

func NewService(restaurants RestaurantLocator, orders OrderQueue, pub events.Publisher, topic string, log *logrus.Entry) *Service {
	return &Service{
		restaurants: restaurants,
		orders:      orders,
		events:      pub,
		topic:       topic,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Checkout prices the cart, queues the order and settles the ordered lines out
// of the cart. The cart is left untouched when any step before queueing fails.
func (s *Service) Checkout(ctx context.Context, c cart.Cart, req Request) (models.Order, error) {
	state := c.Snapshot()
	if state.Empty() {
		return models.Order{}, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return models.Order{}, ErrInvalidPayment
	}
	for _, line := range state.Lines {
		if !line.Item.IsAvailable {
			return models.Order{}, ErrItemUnavailable
		}
	}

	now := s.now()
	var scheduledAt *time.Time
	if req.ScheduleDay != nil {
		at, err := schedule.At(*req.ScheduleDay, req.ScheduleSlot, now)
		if err != nil {
			return models.Order{}, err
		}
		scheduledAt = &at
	}

	restaurant, err := s.restaurants.Restaurant(ctx, state.RestaurantID)
	if err != nil {
		return models.Order{}, err
	}
	if !restaurant.IsOpen && scheduledAt == nil {
		return models.Order{}, ErrRestaurantClosed
	}

	estimate := delivery.Estimated(restaurant.Location, req.Address.Location)

	order := models.Order{
		ID:            s.newID(),
		CustomerID:    req.CustomerID,
		RestaurantID:  state.RestaurantID,
		Items:         make([]models.OrderItem, 0, len(state.Lines)),
		TotalAmount:   state.TotalAmount(),
		DeliveryFee:   estimate.DeliveryFee,
		Status:        models.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		IsScheduled:   scheduledAt != nil,
		ScheduledAt:   scheduledAt,
		CreatedAt:     now,
		DeliveryInfo: models.DeliveryInfo{
			Address:       req.Address,
			DistanceKm:    estimate.DistanceKm,
			EstimatedTime: string(estimate.ETA),
		},
	}
	for _, line := range state.Lines {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: line.Item.ID,
			Name:       line.Item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.Item.Price,
		})
	}

	if err := s.orders.PublishOrder(order); err != nil {
		return models.Order{}, pkgerrors.Wrap(err, "failed to queue order")
	}
	metrics.OrdersPlaced.Inc()

	events.Emit(s.events, s.topic, map[string]interface{}{
		"event":         events.OrderCreated,
		"order_id":      order.ID,
		"customer_id":   order.CustomerID,
		"restaurant_id": order.RestaurantID,
		"total_amount":  order.TotalAmount.String(),
		"delivery_fee":  order.DeliveryFee,
	}, s.log)

	c.Settle(state)
	return order, nil
}

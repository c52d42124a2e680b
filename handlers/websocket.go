package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/delivery"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/models"
)

// estimateSocket answers each Coordinate the client sends with the delivery
// estimate from the restaurant currently in the customer's cart.
func (s *Server) estimateSocket(c *websocket.Conn) {
	id, _ := c.Locals(customerKey).(string)
	log := s.log.WithField("customer_id", id)
	defer c.Close()

	for {
		var position models.Coordinate
		if err := c.ReadJSON(&position); err != nil {
			break
		}

		state := s.carts.For(id).Snapshot()
		if state.Empty() {
			if err := c.WriteJSON(fiber.Map{"error": "cart is empty"}); err != nil {
				break
			}
			continue
		}

		r, err := s.catalog.Restaurant(context.Background(), state.RestaurantID)
		if err != nil {
			log.WithError(err).Warn("restaurant lookup failed")
			if err := c.WriteJSON(fiber.Map{"error": err.Error()}); err != nil {
				break
			}
			continue
		}

		if err := c.WriteJSON(fiber.Map{
			"restaurant_id": r.ID,
			"estimate":      delivery.Estimated(r.Location, position),
		}); err != nil {
			break
		}
	}
}

// StatusDelivered on a LocationUpdate frees the courier for the next order.
const StatusDelivered = "delivered"

type LocationUpdate struct {
	CourierID string  `json:"courier_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status,omitempty"`
}

// courierSocket stores every position a courier reports, frees the courier
// when it reports a delivery and takes it out of dispatch when the socket
// closes.
func (s *Server) courierSocket(c *websocket.Conn) {
	id, _ := c.Locals(courierKey).(string)
	log := s.log.WithField("courier_id", id)
	ctx := context.Background()

	defer func() {
		if err := s.couriers.DeactivateCourier(ctx, id); err != nil {
			log.WithError(err).Warn("Error setting courier inactive")
		}
		c.Close()
	}()

	for {
		var update LocationUpdate
		if err := c.ReadJSON(&update); err != nil {
			break
		}
		if update.CourierID != id {
			continue
		}

		at := models.Coordinate{Latitude: update.Latitude, Longitude: update.Longitude}
		if err := s.couriers.UpdateCourierLocation(ctx, id, at); err != nil {
			log.WithError(err).Warn("Error updating courier location")
		}
		if update.Status == StatusDelivered {
			s.delivered(ctx, id, log)
		}
	}
}

func (s *Server) delivered(ctx context.Context, courierID string, log *logrus.Entry) {
	order, ok, err := s.couriers.ReleaseCourier(ctx, courierID)
	if err != nil {
		log.WithError(err).Warn("Error releasing courier")
		return
	}
	if !ok {
		return
	}
	events.Emit(s.events, s.topic, map[string]interface{}{
		"event":       events.OrderDelivered,
		"order_id":    order.ID,
		"courier_id":  courierID,
		"customer_id": order.CustomerID,
	}, log)
}

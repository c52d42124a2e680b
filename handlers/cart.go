package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Shygul22/foodiempt-sub001/checkout"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/models"
)

type CartResponse struct {
	Lines        []models.CartLine `json:"lines"`
	RestaurantID string            `json:"restaurantId,omitempty"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	TotalItems   int               `json:"total_items"`
}

type AddItemRequest struct {
	Item         models.MenuItem `json:"item"`
	RestaurantID string          `json:"restaurant_id"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CheckoutRequest struct {
	Address       models.Address       `json:"address"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes"`
	ScheduleDate  string               `json:"schedule_date"` // YYYY-MM-DD
	ScheduleSlot  string               `json:"schedule_slot"` // HH:MM
}

func cartResponse(state models.CartState) CartResponse {
	lines := state.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	return CartResponse{
		Lines:        lines,
		RestaurantID: state.RestaurantID,
		TotalAmount:  state.TotalAmount(),
		TotalItems:   state.TotalItems(),
	}
}

func (s *Server) respondCart(c *fiber.Ctx) error {
	return c.JSON(cartResponse(s.carts.For(customerID(c)).Snapshot()))
}

// getCart godoc
// @Summary Get the customer's cart
// @Tags Cart
// @Produce json
// @Success 200 {object} CartResponse
// @Security ApiKeyAuth
// @Router /cart [get]
func (s *Server) getCart(c *fiber.Ctx) error {
	return s.respondCart(c)
}

// addItem godoc
// @Summary Add one of a menu item
// @Description Items from a different restaurant replace the cart.
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Menu item"
// @Success 200 {object} CartResponse
// @Security ApiKeyAuth
// @Router /cart/items [post]
func (s *Server) addItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Item.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "item.id is required")
	}
	if req.Item.Price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "item.price must not be negative")
	}
	if req.RestaurantID == "" {
		req.RestaurantID = req.Item.RestaurantID
	}
	if req.RestaurantID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "restaurant_id is required")
	}

	id := customerID(c)
	s.carts.For(id).AddItem(req.Item, req.RestaurantID)
	s.logEvent(id, map[string]interface{}{
		"event":         events.CartItemAdded,
		"item_id":       req.Item.ID,
		"restaurant_id": req.RestaurantID,
	})
	return s.respondCart(c)
}

// updateQuantity godoc
// @Summary Set an item's quantity
// @Description A quantity of zero or less removes the item.
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path string true "Menu item ID"
// @Param body body UpdateQuantityRequest true "Quantity"
// @Success 200 {object} CartResponse
// @Security ApiKeyAuth
// @Router /cart/items/{id} [put]
func (s *Server) updateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return fiber.NewError(fiber.StatusBadRequest, "quantity is required")
	}

	id := customerID(c)
	s.carts.For(id).UpdateQuantity(c.Params("id"), *req.Quantity)
	s.logEvent(id, map[string]interface{}{
		"event":    events.CartQuantitySet,
		"item_id":  c.Params("id"),
		"quantity": *req.Quantity,
	})
	return s.respondCart(c)
}

// removeItem godoc
// @Summary Remove an item
// @Tags Cart
// @Produce json
// @Param id path string true "Menu item ID"
// @Success 200 {object} CartResponse
// @Security ApiKeyAuth
// @Router /cart/items/{id} [delete]
func (s *Server) removeItem(c *fiber.Ctx) error {
	id := customerID(c)
	s.carts.For(id).RemoveItem(c.Params("id"))
	s.logEvent(id, map[string]interface{}{
		"event":   events.CartItemRemoved,
		"item_id": c.Params("id"),
	})
	return s.respondCart(c)
}

// clearCart godoc
// @Summary Empty the cart
// @Tags Cart
// @Produce json
// @Success 200 {object} CartResponse
// @Security ApiKeyAuth
// @Router /cart [delete]
func (s *Server) clearCart(c *fiber.Ctx) error {
	id := customerID(c)
	s.carts.For(id).ClearCart()
	s.logEvent(id, map[string]interface{}{
		"event": events.CartCleared,
	})
	return s.respondCart(c)
}

// placeOrder godoc
// @Summary Check out the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param body body CheckoutRequest true "Delivery details"
// @Success 201 {object} models.Order
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security ApiKeyAuth
// @Router /cart/checkout [post]
func (s *Server) placeOrder(c *fiber.Ctx) error {
	if s.checkout == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "checkout is not configured")
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCOD
	}

	creq := checkout.Request{
		CustomerID:    customerID(c),
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		ScheduleSlot:  req.ScheduleSlot,
	}
	if req.ScheduleDate != "" {
		day, err := time.ParseInLocation("2006-01-02", req.ScheduleDate, time.Local)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "schedule_date must be YYYY-MM-DD")
		}
		creq.ScheduleDay = &day
	}

	order, err := s.checkout.Checkout(c.UserContext(), s.carts.For(creq.CustomerID), creq)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

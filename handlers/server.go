// Package handlers is the HTTP and websocket surface of the cart service.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/Shygul22/foodiempt-sub001/cart"
	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/checkout"
	"github.com/Shygul22/foodiempt-sub001/events"
	"github.com/Shygul22/foodiempt-sub001/models"
)

// Catalog is where restaurant and courier positions come from.
type Catalog interface {
	Restaurant(ctx context.Context, id string) (catalog.Restaurant, error)
	Restaurants(ctx context.Context, category catalog.Category) ([]catalog.Restaurant, error)
	Couriers(ctx context.Context) ([]models.Courier, error)
}

// CourierTracker records what couriers report over their socket.
type CourierTracker interface {
	UpdateCourierLocation(ctx context.Context, id string, at models.Coordinate) error
	ReleaseCourier(ctx context.Context, id string) (models.Order, bool, error)
	DeactivateCourier(ctx context.Context, id string) error
}

type Server struct {
	carts      *cart.Registry
	checkout   *checkout.Service
	catalog    Catalog
	couriers   CourierTracker
	favourites FavouriteStore
	reviews    ReviewStore
	events     events.Publisher
	topic      string
	auth       *Authenticator
	log        *logrus.Entry
	now        func() time.Time
}

type Options struct {
	Carts      *cart.Registry
	Checkout   *checkout.Service // nil disables POST /cart/checkout
	Catalog    Catalog
	Couriers   CourierTracker
	Favourites FavouriteStore
	Reviews    ReviewStore
	Events     events.Publisher
	Topic      string
	Auth       *Authenticator
	Log        *logrus.Entry
}

func NewServer(opts Options) *Server {
	pub := opts.Events
	if pub == nil {
		pub = events.Nop{}
	}
	return &Server{
		carts:      opts.Carts,
		checkout:   opts.Checkout,
		catalog:    opts.Catalog,
		couriers:   opts.Couriers,
		favourites: opts.Favourites,
		reviews:    opts.Reviews,
		events:     pub,
		topic:      opts.Topic,
		auth:       opts.Auth,
		log:        opts.Log,
		now:        time.Now,
	}
}

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", healthCheck)

	v1 := app.Group("/api/v1", s.auth.Middleware())

	// Cart
	carts := v1.Group("/cart")
	carts.Get("/", s.getCart)
	carts.Delete("/", s.clearCart)
	carts.Post("/items", s.addItem)
	carts.Put("/items/:id", s.updateQuantity)
	carts.Delete("/items/:id", s.removeItem)
	carts.Post("/checkout", s.placeOrder)

	// Restaurants
	shops := v1.Group("/restaurants")
	shops.Get("/", s.listRestaurants)
	shops.Get("/:id/reviews", s.listReviews)
	shops.Post("/:id/reviews", s.submitReview)

	// Favourites
	fav := v1.Group("/favourites")
	fav.Get("/", s.listFavourites)
	fav.Post("/:restaurant_id", s.toggleFavourite)

	// Delivery
	d := v1.Group("/delivery")
	d.Get("/estimate", s.estimate)
	d.Get("/slots", s.slots)
	d.Get("/couriers/nearest", s.nearestCourier)

	// WebSocket
	app.Use("/ws", s.upgradeOnly)
	app.Get("/ws/estimate", s.auth.Middleware(), websocket.New(s.estimateSocket))
	app.Get("/ws/courier", s.auth.CourierMiddleware(), websocket.New(s.courierSocket))
}

func (s *Server) upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (s *Server) logEvent(customerID string, event map[string]interface{}) {
	event["customer_id"] = customerID
	events.Emit(s.events, s.topic, event, s.log)
}

// healthCheck godoc
// @Summary Health check
// @Tags Health
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "cart",
		"time":    time.Now(),
	})
}

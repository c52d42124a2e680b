package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shygul22/foodiempt-sub001/delivery"
	"github.com/Shygul22/foodiempt-sub001/models"
	"github.com/Shygul22/foodiempt-sub001/schedule"
)

func queryCoordinate(c *fiber.Ctx, latKey, lngKey string) (models.Coordinate, bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		return models.Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(c.Query(lngKey), 64)
	if err != nil {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Latitude: lat, Longitude: lng}, true
}

// estimate godoc
// @Summary Distance, fee and ETA between a restaurant and the customer
// @Description Pass restaurant_id, or from_lat/from_lng for an explicit origin.
// @Tags Delivery
// @Produce json
// @Param restaurant_id query string false "Restaurant ID"
// @Param from_lat query number false "Origin latitude"
// @Param from_lng query number false "Origin longitude"
// @Param to_lat query number true "Customer latitude"
// @Param to_lng query number true "Customer longitude"
// @Success 200 {object} delivery.Estimate
// @Security ApiKeyAuth
// @Router /delivery/estimate [get]
func (s *Server) estimate(c *fiber.Ctx) error {
	to, ok := queryCoordinate(c, "to_lat", "to_lng")
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "to_lat and to_lng are required")
	}

	from, ok := queryCoordinate(c, "from_lat", "from_lng")
	if !ok {
		id := c.Query("restaurant_id")
		if id == "" {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id or from_lat and from_lng are required")
		}
		r, err := s.catalog.Restaurant(c.UserContext(), id)
		if err != nil {
			return err
		}
		from = r.Location
	}

	return c.JSON(delivery.Estimated(from, to))
}

// slots godoc
// @Summary Delivery slots still open on a day
// @Tags Delivery
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /delivery/slots [get]
func (s *Server) slots(c *fiber.Ctx) error {
	now := s.now()
	day := now
	if date := c.Query("date"); date != "" {
		d, err := time.ParseInLocation("2006-01-02", date, now.Location())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = d
	}

	open := schedule.Available(day, now)
	if open == nil {
		open = []string{}
	}
	return c.JSON(fiber.Map{
		"date":  day.Format("2006-01-02"),
		"slots": open,
	})
}

// nearestCourier godoc
// @Summary Closest available courier to a restaurant
// @Tags Delivery
// @Produce json
// @Param restaurant_id query string true "Restaurant ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security ApiKeyAuth
// @Router /delivery/couriers/nearest [get]
func (s *Server) nearestCourier(c *fiber.Ctx) error {
	id := c.Query("restaurant_id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "restaurant_id is required")
	}

	r, err := s.catalog.Restaurant(c.UserContext(), id)
	if err != nil {
		return err
	}
	couriers, err := s.catalog.Couriers(c.UserContext())
	if err != nil {
		return err
	}

	courier, ok := delivery.NearestCourier(r.Location, couriers)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no available couriers")
	}
	d := delivery.DistanceKm(r.Location, courier.Location)
	return c.JSON(fiber.Map{
		"courier":     courier,
		"distance_km": d,
		"distance":    delivery.FormatDistance(d),
	})
}

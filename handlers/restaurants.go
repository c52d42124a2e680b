package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/reviews"
)

// FavouriteStore keeps each customer's saved shops.
type FavouriteStore interface {
	Toggle(ctx context.Context, customerID, restaurantID string) (bool, error)
	List(ctx context.Context, customerID string) ([]string, error)
}

type ReviewStore interface {
	Submit(ctx context.Context, r reviews.Review) (reviews.Review, error)
	List(ctx context.Context, restaurantID string, limit int64) ([]reviews.Review, error)
	Summary(ctx context.Context, restaurantID string) (reviews.Summary, error)
}

type ReviewRequest struct {
	OrderID    string `json:"order_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type ReviewsResponse struct {
	Reviews []reviews.Review `json:"reviews"`
	reviews.Summary
}

// listRestaurants godoc
// @Summary Shops, optionally in one category
// @Tags Restaurants
// @Produce json
// @Param category query string false "all, food, grocery, fruits, vegetables, meat, medicine, bakery or beverages"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /restaurants [get]
func (s *Server) listRestaurants(c *fiber.Ctx) error {
	category := catalog.Category(c.Query("category", string(catalog.CategoryAll)))
	if !category.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown category")
	}

	list, err := s.catalog.Restaurants(c.UserContext(), category)
	if err != nil {
		return err
	}
	if list == nil {
		list = []catalog.Restaurant{}
	}
	return c.JSON(fiber.Map{
		"category":    category,
		"restaurants": list,
	})
}

// listReviews godoc
// @Summary A shop's reviews, newest first, with its average rating
// @Tags Restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param limit query int false "Most recent reviews to return"
// @Success 200 {object} ReviewsResponse
// @Security ApiKeyAuth
// @Router /restaurants/{id}/reviews [get]
func (s *Server) listReviews(c *fiber.Ctx) error {
	id := c.Params("id")
	list, err := s.reviews.List(c.UserContext(), id, int64(c.QueryInt("limit", 0)))
	if err != nil {
		return err
	}
	summary, err := s.reviews.Summary(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ReviewsResponse{Reviews: list, Summary: summary})
}

// submitReview godoc
// @Summary Rate an order from a shop
// @Tags Restaurants
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param body body ReviewRequest true "Rating 1-5 and optional text"
// @Success 201 {object} reviews.Review
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security ApiKeyAuth
// @Router /restaurants/{id}/reviews [post]
func (s *Server) submitReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	r, err := s.catalog.Restaurant(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	id := customerID(c)
	review, err := s.reviews.Submit(c.UserContext(), reviews.Review{
		OrderID:      req.OrderID,
		RestaurantID: r.ID,
		CustomerID:   id,
		Rating:       req.Rating,
		Text:         req.ReviewText,
	})
	if err != nil {
		return err
	}

	s.logEvent(id, map[string]interface{}{
		"event":         "review_submitted",
		"restaurant_id": r.ID,
		"order_id":      review.OrderID,
		"rating":        review.Rating,
	})
	return c.Status(fiber.StatusCreated).JSON(review)
}

// listFavourites godoc
// @Summary The customer's saved shops
// @Tags Favourites
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /favourites [get]
func (s *Server) listFavourites(c *fiber.Ctx) error {
	ids, err := s.favourites.List(c.UserContext(), customerID(c))
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(fiber.Map{"restaurant_ids": ids})
}

// toggleFavourite godoc
// @Summary Save or unsave a shop
// @Tags Favourites
// @Produce json
// @Param restaurant_id path string true "Restaurant ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security ApiKeyAuth
// @Router /favourites/{restaurant_id} [post]
func (s *Server) toggleFavourite(c *fiber.Ctx) error {
	r, err := s.catalog.Restaurant(c.UserContext(), c.Params("restaurant_id"))
	if err != nil {
		return err
	}

	on, err := s.favourites.Toggle(c.UserContext(), customerID(c), r.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"restaurant_id": r.ID,
		"favourite":     on,
	})
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Shygul22/foodiempt-sub001/catalog"
	"github.com/Shygul22/foodiempt-sub001/checkout"
	"github.com/Shygul22/foodiempt-sub001/reviews"
	"github.com/Shygul22/foodiempt-sub001/schedule"
)

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidPayment),
		errors.Is(err, schedule.ErrSlotUnavailable),
		errors.Is(err, schedule.ErrInPast),
		errors.Is(err, reviews.ErrInvalidRating),
		errors.Is(err, reviews.ErrMissingOrder):
		code = fiber.StatusBadRequest
	case errors.Is(err, catalog.ErrRestaurantNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, checkout.ErrRestaurantClosed),
		errors.Is(err, checkout.ErrItemUnavailable),
		errors.Is(err, reviews.ErrAlreadyReviewed):
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

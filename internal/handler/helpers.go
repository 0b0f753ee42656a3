package handler

import (
	"errors"

	"go-pharma-store/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper to pull user info from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // Fallback (shouldn't happen in protected routes)
	}
	return userID.(string)
}

func getShopperID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// failCheckout maps the service error taxonomy onto HTTP statuses: caller
// mistakes are 400, retryable conflicts are 409, missing records are 404,
// everything else is a generic retryable 500.
func failCheckout(c *fiber.Ctx, err error) error {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrBelowMinimum),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidDosage):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &stockErr):
		return c.Status(409).JSON(fiber.Map{
			"error":      "unavailable, please adjust quantity",
			"product_id": stockErr.ProductID,
			"product":    stockErr.ProductName,
		})
	case errors.Is(err, service.ErrNegativeStock),
		errors.Is(err, service.ErrInvalidTransition):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "something went wrong, please try again"})
	}
}

package handler

import (
	"go-pharma-store/internal/model"
	"go-pharma-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// GET /orders — the shopper's own history
func (h *OrderHandler) History(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orders, err := h.service.History(c.UserContext(), shopperID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(orders)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return failCheckout(c, err)
	}

	// Shoppers can only read their own orders; staff can read any.
	if role, _ := c.Locals("user_role").(string); role != model.RoleAdmin {
		if order.ShopperID.String() != getUserID(c) {
			return c.Status(404).JSON(fiber.Map{"error": "order not found"})
		}
	}
	return c.JSON(order)
}

// GET /admin/orders?status=processing
func (h *OrderHandler) ListByStatus(c *fiber.Ctx) error {
	status := model.CheckoutStatus(c.Query("status", string(model.StatusProcessing)))

	orders, err := h.service.ListByStatus(c.UserContext(), status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(orders)
}

// PUT /admin/orders/:id/confirm
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.Confirm(c.UserContext(), id, getUserID(c))
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order confirmed", "data": order})
}

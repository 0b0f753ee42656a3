package handler

import (
	"go-pharma-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	checkout service.CheckoutService
}

func NewCheckoutHandler(checkout service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	VoucherCode string `json:"voucher_code"`
}

// POST /checkout/cash
func (h *CheckoutHandler) CashCheckout(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.checkout.CashCheckout(c.UserContext(), shopperID, req.VoucherCode)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// POST /checkout/ewallet/session
func (h *CheckoutHandler) CreateEwalletSession(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	session, err := h.checkout.BeginEwalletCheckout(c.UserContext(), shopperID, req.VoucherCode)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment session created", "data": session})
}

// GET /checkout/ewallet/callback?order_id=...
//
// Public route: the shopper arrives here from the provider's hosted flow,
// without our bearer token. Replays are harmless; the service commits stock
// at most once per order.
func (h *CheckoutHandler) EwalletCallback(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Query("order_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.checkout.CompleteEwalletCheckout(c.UserContext(), orderID)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment completed", "data": order})
}

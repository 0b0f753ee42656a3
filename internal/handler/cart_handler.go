package handler

import (
	"go-pharma-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	carts   service.CartService
	pricing *service.PricingEngine
}

func NewCartHandler(carts service.CartService, pricing *service.PricingEngine) *CartHandler {
	return &CartHandler{carts: carts, pricing: pricing}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Dosage    string `json:"dosage"`
}

type setQuantityRequest struct {
	Quantity int    `json:"quantity"`
	Dosage   string `json:"dosage"`
}

// GET /cart?voucher=CODE
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	lines, err := h.carts.GetCart(c.UserContext(), shopperID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	quote := h.pricing.Quote(lines, c.Query("voucher"))
	return c.JSON(fiber.Map{"items": lines, "quote": quote})
}

// POST /cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	productID, err := parseUUID(req.ProductID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	line, err := h.carts.AddItem(c.UserContext(), shopperID, productID, req.Quantity, req.Dosage)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item added", "data": line})
}

// PUT /cart/items/:id
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	line, err := h.carts.SetQuantity(c.UserContext(), shopperID, productID, req.Dosage, req.Quantity)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quantity updated", "data": line})
}

// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	shopperID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.carts.RemoveItem(c.UserContext(), shopperID, productID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Item removed"})
}

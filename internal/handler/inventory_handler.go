package handler

import (
	"go-pharma-store/internal/model"
	"go-pharma-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GET /products?category=...
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	var (
		products []model.Product
		err      error
	)
	if category := c.Query("category"); category != "" {
		products, err = h.service.GetProductsByCategory(c.UserContext(), model.Category(category))
	} else {
		products, err = h.service.GetProducts(c.UserContext())
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GET /products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(product)
}

// POST /products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateProduct(c.UserContext(), &product, getUserID(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &product, getUserID(c))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// POST /products/:id/restock
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Restock(c.UserContext(), id, req.Quantity, getUserID(c))
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product restocked", "data": product})
}

// POST /products/:id/adjust
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Adjust(c.UserContext(), id, req.Delta, getUserID(c))
	if err != nil {
		return failCheckout(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": product})
}

// GET /admin/alerts/low-stock
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GET /admin/alerts/expiring
func (h *InventoryHandler) NearingExpiry(c *fiber.Ctx) error {
	products, err := h.service.NearingExpiry(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GET /admin/dashboard/stats
func (h *InventoryHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(stats)
}

package middleware

import (
	"strings"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/repository"
	"go-pharma-store/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT and sets the shopper identity in the request
// context. Every downstream operation takes the shopper id from here
// explicitly; there is no ambient identity anywhere else.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// RequireAdmin gates staff-only routes.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok || role != model.RoleAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: staff only"})
		}
		return c.Next()
	}
}

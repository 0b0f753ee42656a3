package handler

import (
	"go-pharma-store/internal/model"
	"go-pharma-store/internal/repository"
	"go-pharma-store/internal/service"
	"go-pharma-store/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	userRepo    repository.UserRepository
}

func NewAuthHandler(authService service.AuthService, userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{authService: authService, userRepo: userRepo}
}

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// DeviceRequest carries the push token the client registers for delivery
type DeviceRequest struct {
	DeviceToken string `json:"device_token"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, password, and full_name are required"})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 6 characters"})
	}

	user, err := h.authService.Register(c.UserContext(), req.Email, req.Password, req.FullName, req.PhoneNumber)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Account created", "data": user.ToResponse()})
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(response)
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, old_password, and new_password are required"})
	}
	if len(req.NewPassword) < 6 {
		return c.Status(400).JSON(fiber.Map{"error": "New password must be at least 6 characters"})
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// POST /api/v1/devices
func (h *AuthHandler) RegisterDevice(c *fiber.Ctx) error {
	userID, err := getShopperID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req DeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.DeviceToken == "" {
		return c.Status(400).JSON(fiber.Map{"error": "device_token is required"})
	}

	if err := h.authService.RegisterDevice(c.UserContext(), userID, req.DeviceToken); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Device registered"})
}

// GET /api/v1/admin/users
func (h *AuthHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userRepo.FindAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	responses := make([]model.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return c.JSON(responses)
}

// CreateUserRequest is the admin staff-creation request body
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

// POST /api/v1/admin/users
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 6 characters"})
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		IsActive:    true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	if err := validator.First(user); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	user.CreatedBy = getUserID(c)
	user.UpdatedBy = getUserID(c)

	if err := h.userRepo.Create(c.UserContext(), user); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Failed to create user"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": user.ToResponse()})
}

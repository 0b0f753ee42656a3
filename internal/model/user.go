package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleShopper = "SHOPPER"
)

// User represents a shopper or staff account.
type User struct {
	BaseModel
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber string `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string `gorm:"type:varchar(20);not null;default:'SHOPPER';index" json:"role" validate:"required,oneof=ADMIN SHOPPER"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Push delivery target registered by the client app; empty means the
	// dispatcher has nowhere to deliver for this user.
	DeviceToken string `gorm:"type:varchar(255);index" json:"-"`

	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user holds the staff role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}
}

package service

import (
	"context"
	"errors"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/repository"
	"go-pharma-store/pkg/jwt"
	"go-pharma-store/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailTaken         = errors.New("email is already registered")
)

type AuthService interface {
	Register(ctx context.Context, email, password, fullName, phone string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	RegisterDevice(ctx context.Context, userID uuid.UUID, deviceToken string) error
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

// Register creates a shopper account. Staff accounts are created by an admin
// through the user management endpoints.
func (s *authService) Register(ctx context.Context, email, password, fullName, phone string) (*model.User, error) {
	user := &model.User{
		Email:       email,
		FullName:    fullName,
		PhoneNumber: phone,
		Role:        model.RoleShopper,
		IsActive:    true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := validator.First(user); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user.CreatedBy = "self"
	user.UpdatedBy = "self"
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: rotate the token version on every login.
	newVersion := uuid.New().String()
	if err := s.users.UpdateTokenVersion(ctx, user.ID, newVersion); err != nil {
		return nil, errors.New("failed to update session")
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role, newVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.users.Update(ctx, user)
}

// RegisterDevice stores the push token notifications are delivered to.
func (s *authService) RegisterDevice(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}
	return s.users.UpdateDeviceToken(ctx, userID, deviceToken)
}

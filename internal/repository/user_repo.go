package repository

import (
	"context"
	"errors"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error
	UpdateTokenVersion(ctx context.Context, id uuid.UUID, version string) error
	AdminDeviceTokens(ctx context.Context) ([]string, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := conn(ctx, r.db).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepo) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("device_token", token).Error
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, id uuid.UUID, version string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("token_version", version).Error
}

// AdminDeviceTokens lists the push tokens of every active staff account.
func (r *userRepo) AdminDeviceTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := conn(ctx, r.db).Model(&model.User{}).
		Where("role = ? AND is_active = ? AND device_token <> ''", model.RoleAdmin, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

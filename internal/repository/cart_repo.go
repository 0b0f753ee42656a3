package repository

import (
	"context"
	"errors"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error)
	FindLine(ctx context.Context, shopperID, productID uuid.UUID, dosage string) (*model.CartLine, error)
	Save(ctx context.Context, line *model.CartLine) error
	DeleteLine(ctx context.Context, shopperID, productID uuid.UUID) error
	Clear(ctx context.Context, shopperID uuid.UUID) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) FindLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := conn(ctx, r.db).Preload("Product").
		Where("shopper_id = ?", shopperID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) FindLine(ctx context.Context, shopperID, productID uuid.UUID, dosage string) (*model.CartLine, error) {
	var line model.CartLine
	err := conn(ctx, r.db).
		Where("shopper_id = ? AND product_id = ? AND dosage = ?", shopperID, productID, dosage).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) Save(ctx context.Context, line *model.CartLine) error {
	return conn(ctx, r.db).Save(line).Error
}

// DeleteLine removes every dosage variant of the product from the cart.
// Deleting an absent line is a no-op. Cart lines are working state, not
// history, so they are removed for real rather than soft-deleted.
func (r *cartRepo) DeleteLine(ctx context.Context, shopperID, productID uuid.UUID) error {
	return conn(ctx, r.db).Unscoped().
		Where("shopper_id = ? AND product_id = ?", shopperID, productID).
		Delete(&model.CartLine{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, shopperID uuid.UUID) error {
	return conn(ctx, r.db).Unscoped().
		Where("shopper_id = ?", shopperID).
		Delete(&model.CartLine{}).Error
}

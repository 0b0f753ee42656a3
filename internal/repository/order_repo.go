package repository

import (
	"context"
	"errors"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByShopper(ctx context.Context, shopperID uuid.UUID) ([]model.Order, error)
	FindByStatus(ctx context.Context, status model.CheckoutStatus) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CheckoutStatus) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return conn(ctx, r.db).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := conn(ctx, r.db).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row for the duration of the surrounding
// transaction. Used by the payment callback so duplicate deliveries
// serialize instead of double-committing.
func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := conn(ctx, r.db).Set("gorm:query_option", "FOR UPDATE").
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByShopper(ctx context.Context, shopperID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := conn(ctx, r.db).Preload("Items").
		Where("shopper_id = ?", shopperID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByStatus(ctx context.Context, status model.CheckoutStatus) ([]model.Order, error) {
	var orders []model.Order
	err := conn(ctx, r.db).Preload("Items").Preload("Shopper").
		Where("checkout_status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus is a conditional write keyed on the expected current status.
// A concurrent transition loses the race and gets ErrStatusConflict.
func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CheckoutStatus) error {
	if !from.CanTransition(to) {
		return ErrStatusConflict
	}
	res := conn(ctx, r.db).Model(&model.Order{}).
		Where("id = ? AND checkout_status = ?", id, from).
		Update("checkout_status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

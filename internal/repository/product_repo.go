package repository

import (
	"context"
	"errors"
	"time"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByCategory(ctx context.Context, category model.Category) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedBy string) error
	FindLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	FindNearingExpiry(ctx context.Context, now time.Time, window time.Duration) ([]model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Where("category = ?", category).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db).First(&product, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return conn(ctx, r.db).Save(product).Error
}

// DecrementStock is a conditional write: it only succeeds when the current
// stock level covers qty, so concurrent checkouts against the same product
// can never drive the level negative.
func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error {
	res := conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// AdjustStock applies a signed delta with the same non-negative guard.
func (r *productRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedBy string) error {
	res := conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *productRepo) FindLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Where("stock < ?", threshold).Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindNearingExpiry(ctx context.Context, now time.Time, window time.Duration) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).
		Where("expires_at IS NOT NULL AND expires_at BETWEEN ? AND ?", now, now.Add(window)).
		Order("expires_at ASC").
		Find(&products).Error
	return products, err
}

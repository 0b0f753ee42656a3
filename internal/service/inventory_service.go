package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/notification"
	"go-pharma-store/internal/repository"
	"go-pharma-store/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold marks a product as running low on the admin console.
	LowStockThreshold = 10
	// ExpiryLookahead is how far ahead the nearing-expiry view looks.
	ExpiryLookahead = 14 * 24 * time.Hour
)

// DashboardStats is the admin console overview.
type DashboardStats struct {
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.Product, userID string) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, userID string) (*model.Product, error)
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetProductsByCategory(ctx context.Context, category model.Category) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetStock(ctx context.Context, id uuid.UUID) (int, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int, userID string) (*model.Product, error)
	Adjust(ctx context.Context, id uuid.UUID, delta int, userID string) (*model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	NearingExpiry(ctx context.Context) ([]model.Product, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type inventoryService struct {
	products   repository.ProductRepository
	users      repository.UserRepository
	dispatcher notification.Dispatcher
}

func NewInventoryService(products repository.ProductRepository, users repository.UserRepository, dispatcher notification.Dispatcher) InventoryService {
	return &inventoryService{products: products, users: users, dispatcher: dispatcher}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product, userID string) error {
	if err := validator.First(req); err != nil {
		return err
	}
	if req.Stock < 0 {
		return ErrNegativeStock
	}

	existing, err := s.products.FindBySKU(ctx, req.SKU)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrSKUExists
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID
	return s.products.Create(ctx, req)
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, userID string) (*model.Product, error) {
	if err := validator.First(req); err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing.SKU = req.SKU
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Price = req.Price
	existing.RequiresPrescription = req.RequiresPrescription
	existing.Dosages = req.Dosages
	existing.Purposes = req.Purposes
	existing.ExpiresAt = req.ExpiresAt
	existing.UpdatedBy = userID
	existing.UpdatedByUserID = &userID

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) GetProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *inventoryService) GetProductsByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	return s.products.FindByCategory(ctx, category)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) GetStock(ctx context.Context, id uuid.UUID) (int, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// Restock is an inbound adjustment; quantity must be positive.
func (s *inventoryService) Restock(ctx context.Context, id uuid.UUID, quantity int, userID string) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.Adjust(ctx, id, quantity, userID)
}

// Adjust applies a signed stock delta. A delta that would take stock below
// zero is rejected whole; products that end up under the low-stock threshold
// trigger an admin alert.
func (s *inventoryService) Adjust(ctx context.Context, id uuid.UUID, delta int, userID string) (*model.Product, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	if err := s.products.AdjustStock(ctx, id, delta, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrNegativeStock
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProductNotFound
		default:
			return nil, err
		}
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.Stock < LowStockThreshold {
		go s.notifyLowStock(product)
	}
	return product, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]model.Product, error) {
	return s.products.FindLowStock(ctx, LowStockThreshold)
}

func (s *inventoryService) NearingExpiry(ctx context.Context) ([]model.Product, error) {
	return s.products.FindNearingExpiry(ctx, time.Now(), ExpiryLookahead)
}

func (s *inventoryService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalValuation: decimal.Zero}
	for i := range products {
		p := &products[i]
		stats.TotalProducts++
		if p.Stock < LowStockThreshold {
			stats.LowStockCount++
		}
		stats.TotalValuation = stats.TotalValuation.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return stats, nil
}

func (s *inventoryService) notifyLowStock(product *model.Product) {
	tokens, err := s.users.AdminDeviceTokens(context.Background())
	if err != nil {
		log.Printf("failed to resolve admin recipients: %v", err)
		return
	}
	notification.Send(s.dispatcher, tokens, notification.Message{
		Title:    "Stock low",
		Body:     fmt.Sprintf("%s is down to %d units", product.Name, product.Stock),
		Metadata: map[string]string{"product_id": product.ID.String()},
	})
}

package service

import (
	"context"
	"errors"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/repository"

	"github.com/google/uuid"
)

type CartService interface {
	AddItem(ctx context.Context, shopperID, productID uuid.UUID, quantity int, dosage string) (*model.CartLine, error)
	RemoveItem(ctx context.Context, shopperID, productID uuid.UUID) error
	SetQuantity(ctx context.Context, shopperID, productID uuid.UUID, dosage string, quantity int) (*model.CartLine, error)
	GetCart(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error)
	Clear(ctx context.Context, shopperID uuid.UUID) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

// AddItem merges into an existing (product, dosage) line or appends a new one
// with the unit price captured now. Stock is deliberately not checked here;
// availability is validated at checkout.
func (s *cartService) AddItem(ctx context.Context, shopperID, productID uuid.UUID, quantity int, dosage string) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.HasDosage(dosage) {
		return nil, ErrInvalidDosage
	}

	line, err := s.carts.FindLine(ctx, shopperID, productID, dosage)
	switch {
	case err == nil:
		line.Quantity += quantity
	case errors.Is(err, repository.ErrNotFound):
		line = &model.CartLine{
			ShopperID: shopperID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			Dosage:    dosage,
		}
	default:
		return nil, err
	}

	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	line.Product = product
	return line, nil
}

// RemoveItem deletes the matching line; removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, shopperID, productID uuid.UUID) error {
	return s.carts.DeleteLine(ctx, shopperID, productID)
}

// SetQuantity clamps to a minimum of 1: asking for less than one unit leaves
// the line unchanged rather than removing it.
func (s *cartService) SetQuantity(ctx context.Context, shopperID, productID uuid.UUID, dosage string, quantity int) (*model.CartLine, error) {
	line, err := s.carts.FindLine(ctx, shopperID, productID, dosage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if quantity < 1 {
		return line, nil
	}

	line.Quantity = quantity
	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// GetCart returns the current lines; an empty cart is a valid result, not an
// error.
func (s *cartService) GetCart(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	return s.carts.FindLines(ctx, shopperID)
}

func (s *cartService) Clear(ctx context.Context, shopperID uuid.UUID) error {
	return s.carts.Clear(ctx, shopperID)
}

package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart rejects a checkout attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrBelowMinimum rejects an e-wallet checkout under the minimum total,
	// before the payment collaborator is contacted.
	ErrBelowMinimum = errors.New("order total is below the e-wallet minimum")
	// ErrNegativeStock rejects an admin adjustment that would drive stock
	// below zero.
	ErrNegativeStock = errors.New("stock adjustment would result in negative stock")
	// ErrInvalidTransition rejects any order status change other than
	// processing -> Confirmed.
	ErrInvalidTransition = errors.New("invalid order status transition")

	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidDosage   = errors.New("dosage is not offered for this product")
	ErrSKUExists       = errors.New("SKU already exists")
)

// InsufficientStockError names the product whose stock could not cover the
// requested quantity. The whole checkout is aborted; no partial decrement
// has happened when this is returned.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d", e.ProductName, e.Requested)
}

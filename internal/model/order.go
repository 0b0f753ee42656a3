package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentEwallet PaymentMethod = "EWALLET"
)

// CheckoutStatus is the order state machine. Cash orders start at
// StatusProcessing. E-wallet orders start at StatusAwaitingPayment and move
// to StatusProcessing when the payment callback commits stock; an order stuck
// in StatusAwaitingPayment has reserved no stock and is safe to reconcile as
// abandoned. Admins confirm processing orders; Confirmed is terminal.
type CheckoutStatus string

const (
	StatusAwaitingPayment CheckoutStatus = "awaiting_payment"
	StatusProcessing      CheckoutStatus = "processing"
	StatusConfirmed       CheckoutStatus = "Confirmed"
)

// CanTransition reports whether moving from s to next is a legal step.
func (s CheckoutStatus) CanTransition(next CheckoutStatus) bool {
	switch s {
	case StatusAwaitingPayment:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusConfirmed
	default:
		return false
	}
}

// Order is an immutable record of a checkout. Line items and monetary fields
// are snapshots taken at checkout time; only CheckoutStatus changes afterwards.
type Order struct {
	BaseModel
	ShopperID uuid.UUID `gorm:"type:uuid;not null;index" json:"shopper_id" validate:"uuid_required"`
	Shopper   *User     `gorm:"foreignKey:ShopperID" json:"shopper,omitempty" validate:"-"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=CASH EWALLET"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID" json:"items" validate:"required,min=1,dive"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	VoucherCode string          `gorm:"type:varchar(50)" json:"voucher_code,omitempty"`

	CheckoutStatus CheckoutStatus `gorm:"type:varchar(20);not null;index" json:"checkout_status"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Dosage      string          `gorm:"type:varchar(50)" json:"dosage,omitempty"`
}

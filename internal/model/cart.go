package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product selection in a shopper's cart. The unit price is
// captured at add-time so later catalog price edits do not silently reprice
// a cart the shopper already reviewed.
type CartLine struct {
	BaseModel
	ShopperID uuid.UUID `gorm:"type:uuid;not null;index" json:"shopper_id" validate:"uuid_required"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`

	Quantity  int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Dosage    string          `gorm:"type:varchar(50)" json:"dosage"`
}

// LineTotal is unit price times quantity.
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

package service

import (
	"go-pharma-store/internal/model"

	"github.com/shopspring/decimal"
)

// Pricing rates. The voucher code itself is configured on the engine; an
// unrecognized code is not an error, the shopper just keeps the default rate.
var (
	defaultDiscountRate = decimal.NewFromFloat(0.05)
	voucherDiscountRate = decimal.NewFromFloat(0.10)
	taxRate             = decimal.NewFromFloat(0.12)
)

// Quote is the derived money breakdown for a cart. Every field is zero for
// an empty cart.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	Discount       decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	VoucherApplied bool            `json:"voucher_applied"`
}

// PricingEngine is a pure calculator over cart lines. It holds no state
// beyond the recognized voucher code and has no side effects.
type PricingEngine struct {
	voucherCode string
	voucherRate decimal.Decimal
	defaultRate decimal.Decimal
	taxRate     decimal.Decimal
}

func NewPricingEngine(voucherCode string) *PricingEngine {
	return &PricingEngine{
		voucherCode: voucherCode,
		voucherRate: voucherDiscountRate,
		defaultRate: defaultDiscountRate,
		taxRate:     taxRate,
	}
}

// VoucherValid is a case-sensitive match against the recognized code.
func (e *PricingEngine) VoucherValid(code string) bool {
	return code != "" && code == e.voucherCode
}

// Quote derives subtotal, discount, tax and grand total:
//
//	discount = subtotal * rate
//	tax      = (subtotal - discount) * 12%
//	total    = (subtotal - discount) + tax
func (e *PricingEngine) Quote(lines []model.CartLine, voucherCode string) Quote {
	subtotal := decimal.Zero
	for i := range lines {
		subtotal = subtotal.Add(lines[i].LineTotal())
	}

	rate := e.defaultRate
	applied := e.VoucherValid(voucherCode)
	if applied {
		rate = e.voucherRate
	}

	discount := subtotal.Mul(rate)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(e.taxRate)

	return Quote{
		Subtotal:       subtotal,
		DiscountRate:   rate,
		Discount:       discount,
		Tax:            tax,
		Total:          taxable.Add(tax),
		VoucherApplied: applied,
	}
}

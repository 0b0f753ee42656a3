package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the fixed set of shelf categories the storefront knows about.
type Category string

const (
	CategoryPainRelief  Category = "pain_relief"
	CategoryAntibiotics Category = "antibiotics"
	CategoryVitamins    Category = "vitamins"
	CategoryCoughCold   Category = "cough_cold"
	CategoryFirstAid    Category = "first_aid"
	CategorySkinCare    Category = "skin_care"
	CategorySupplements Category = "supplements"
)

type Product struct {
	BaseModel
	SKU         string   `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string   `gorm:"type:text" json:"description"`
	Category    Category `gorm:"type:varchar(30);not null;index" json:"category" validate:"required,oneof=pain_relief antibiotics vitamins cough_cold first_aid skin_care supplements"`

	Price decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock int             `gorm:"default:0" json:"stock" validate:"gte=0"`

	RequiresPrescription bool `gorm:"default:false" json:"requires_prescription"`

	// Dosage options a shopper can pick in the cart (e.g. "250mg", "500mg")
	// and purpose tags used for storefront search.
	Dosages  []string `gorm:"serializer:json" json:"dosages,omitempty"`
	Purposes []string `gorm:"serializer:json" json:"purposes,omitempty"`

	ExpiresAt *time.Time `gorm:"type:date" json:"expires_at,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
}

// HasDosage reports whether the given dosage is one of the product's options.
// An empty dosage is always acceptable (products without dosage variants).
func (p *Product) HasDosage(dosage string) bool {
	if dosage == "" {
		return true
	}
	for _, d := range p.Dosages {
		if d == dosage {
			return true
		}
	}
	return false
}

// ExpiresWithin reports whether the product expires inside [now, now+window].
// Products without an expiration date never match.
func (p *Product) ExpiresWithin(now time.Time, window time.Duration) bool {
	if p.ExpiresAt == nil {
		return false
	}
	exp := *p.ExpiresAt
	return !exp.Before(now) && !exp.After(now.Add(window))
}

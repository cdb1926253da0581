package domain

import (
	"math"
	"time"
)

// AvailableStock is the placeholder stock level assigned to variants that
// are available and online in the source feed. The feed carries no real
// inventory counts.
const AvailableStock = 10

// Product represents a catalog product reconciled from the upstream feed.
// ExternalID is the stable identifier from the source catalog and acts as
// the idempotency key across re-imports.
type Product struct {
	ID              string    `json:"id"`
	ExternalID      string    `json:"external_id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	BasePrice       int64     `json:"base_price"`
	SalePrice       *int64    `json:"sale_price,omitempty"`
	DiscountPercent int       `json:"discount_percent"`
	BrandID         *string   `json:"brand_id,omitempty"`
	IsActive        bool      `json:"is_active"`
	IsFeatured      bool      `json:"is_featured"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Variant represents a purchasable combination of a product's attribute
// options (e.g. size + color). Variants are fully regenerated on every
// import run, never merged.
type Variant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	SalePrice *int64    `json:"sale_price,omitempty"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// MinorUnits converts a feed price in major units (rubles) to minor units
// (kopecks), rounding half away from zero.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// DiscountPercent computes the rounded discount percentage for a base and
// sale price pair. Returns 0 when either price is missing or non-positive.
func DiscountPercent(basePrice, salePrice int64) int {
	if basePrice <= 0 || salePrice <= 0 {
		return 0
	}
	return int(math.Round(100 - float64(salePrice)/float64(basePrice)*100))
}

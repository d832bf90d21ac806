package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus controls catalog visibility.
type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductRemoved ProductStatus = "removed"
)

// Product is a digital image listed by a vendor.
type Product struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	VendorName  *string         `json:"vendor_name,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	OriginalURL string          `json:"original_url"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
	OriginalURL *string          `json:"original_url"`
	Status      *ProductStatus   `json:"status"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Category == nil &&
		p.ImageURL == nil && p.OriginalURL == nil && p.Status == nil
}

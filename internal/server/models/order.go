package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPaid is the only status orders are recorded with.
const OrderStatusPaid = "paid"

// Order is an immutable record of a completed purchase.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	VendorID  string          `json:"vendor_id"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

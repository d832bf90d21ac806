package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Favorite is a user's bookmark of a product with the client-provided
// product snapshot it was saved with.
type Favorite struct {
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Snapshot  json.RawMessage `json:"image_data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Download records that a user fetched a product. One row per pair; the
// timestamp moves forward on every re-download.
type Download struct {
	UserID       string          `json:"user_id"`
	ProductID    string          `json:"product_id"`
	Snapshot     json.RawMessage `json:"image_data"`
	DownloadedAt time.Time       `json:"downloaded_at"`
}

// MaxCartQuantity bounds a single cart line.
const MaxCartQuantity = 100

// CartLine is one product in a user's cart. Quantity is always between 1
// and MaxCartQuantity.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartItem is a cart line joined with the current product data.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	VendorID  string          `json:"vendor_id"`
}

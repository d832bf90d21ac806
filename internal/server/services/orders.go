package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// OrderService appends to the order ledger. Orders are never updated or
// deleted; there is no idempotency key, so repeated calls record repeated
// orders.
type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager) *OrderService {
	return &OrderService{db: db, repomanager: m}
}

// RecordOrder appends a paid order with the given denormalized vendor and price.
func (s *OrderService) RecordOrder(ctx context.Context, userID, productID, vendorID string, price decimal.Decimal) (*models.Order, error) {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(vendorID) == "" {
		return nil, common.NewError(common.ErrorInvalidInput, "Product and vendor are required")
	}
	if price.IsNegative() {
		return nil, common.NewError(common.ErrorInvalidInput, "Price must not be negative")
	}
	o, err := s.repomanager.Orders(s.db).Create(ctx, &models.Order{
		UserID:    userID,
		ProductID: productID,
		VendorID:  vendorID,
		Price:     price,
	})
	if err != nil {
		return nil, fmt.Errorf("error recording order: %w", err)
	}
	return o, nil
}

// Purchase records an order for an active product, taking vendor and price
// from the catalog.
func (s *OrderService) Purchase(ctx context.Context, userID, productID string) (*models.Order, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, common.NewError(common.ErrorInvalidInput, "Product ID is required")
	}
	p, err := s.repomanager.Products(s.db).GetByID(ctx, productID)
	if err != nil {
		return nil, productNotFound(err, "loading product")
	}
	if p.Status != models.ProductActive {
		return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
	}
	return s.RecordOrder(ctx, userID, p.ID, p.VendorID, p.Price)
}

// History returns the user's orders, newest first.
func (s *OrderService) History(ctx context.Context, userID string) ([]*models.Order, error) {
	list, err := s.repomanager.Orders(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	return list, nil
}

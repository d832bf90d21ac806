package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/carts"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
)

const (
	msgImageRequired   = "Image ID and data are required"
	msgPurchaseFirst   = "You must purchase this product to download."
	msgCartEmpty       = "Cart is empty"
	msgInvalidQuantity = "Quantity must be at least 1"
)

var msgQuantityLimit = fmt.Sprintf("Quantity cannot exceed %d", models.MaxCartQuantity)

// EntitlementService manages favorites, downloads and the cart. Every
// mutation is a single upsert or delete so concurrent requests for the same
// (user, product) pair never lose updates or duplicate rows.
type EntitlementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEntitlementService(db *sql.DB, m repomanager.RepositoryManager) *EntitlementService {
	return &EntitlementService{db: db, repomanager: m}
}

func requireSnapshot(productID string, snapshot json.RawMessage) error {
	if strings.TrimSpace(productID) == "" || len(snapshot) == 0 || string(snapshot) == "null" {
		return common.NewError(common.ErrorInvalidInput, msgImageRequired)
	}
	if !json.Valid(snapshot) {
		return common.NewError(common.ErrorInvalidInput, "Image data must be valid JSON")
	}
	return nil
}

func productNotFound(err error, op string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewError(common.ErrorNotFound, msgProductNotFound)
	}
	return fmt.Errorf("error %s: %w", op, err)
}

// activeProduct resolves a product visible in the catalog.
func (s *EntitlementService) activeProduct(ctx context.Context, tx dbx.DBTX, productID string) (*models.Product, error) {
	p, err := s.repomanager.Products(tx).GetByID(ctx, productID)
	if err != nil {
		return nil, productNotFound(err, "loading product")
	}
	if p.Status != models.ProductActive {
		return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
	}
	return p, nil
}

// AddFavorite bookmarks a product. Repeating it is a silent no-op.
func (s *EntitlementService) AddFavorite(ctx context.Context, userID, productID string, snapshot json.RawMessage) error {
	if err := requireSnapshot(productID, snapshot); err != nil {
		return err
	}
	if err := s.repomanager.Favorites(s.db).Add(ctx, userID, productID, snapshot); err != nil {
		return productNotFound(err, "adding favorite")
	}
	return nil
}

// RemoveFavorite deletes the bookmark; a missing one is not an error.
func (s *EntitlementService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	if err := s.repomanager.Favorites(s.db).Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether the user has bookmarked the product.
func (s *EntitlementService) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.repomanager.Favorites(s.db).Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("error checking favorite: %w", err)
	}
	return ok, nil
}

// Favorites lists bookmarks, most recent first.
func (s *EntitlementService) Favorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	list, err := s.repomanager.Favorites(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}
	return list, nil
}

// AddDownload records a download of a free product. Paid products are
// refused until purchases can be verified against the order ledger.
func (s *EntitlementService) AddDownload(ctx context.Context, userID, productID string, snapshot json.RawMessage) error {
	if err := requireSnapshot(productID, snapshot); err != nil {
		return err
	}
	p, err := s.activeProduct(ctx, s.db, productID)
	if err != nil {
		return err
	}
	if p.Price.IsPositive() {
		return common.NewError(common.ErrorForbidden, msgPurchaseFirst)
	}
	if err := s.repomanager.Downloads(s.db).Upsert(ctx, userID, productID, snapshot); err != nil {
		return productNotFound(err, "recording download")
	}
	return nil
}

// Downloads lists download history, most recent first.
func (s *EntitlementService) Downloads(ctx context.Context, userID string) ([]*models.Download, error) {
	list, err := s.repomanager.Downloads(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing downloads: %w", err)
	}
	return list, nil
}

// AddToCart adds quantity units of an active product, incrementing an
// existing line. It returns the line's resulting quantity. A line never
// holds more than models.MaxCartQuantity units.
func (s *EntitlementService) AddToCart(ctx context.Context, userID, productID string, quantity int) (int, error) {
	if strings.TrimSpace(productID) == "" {
		return 0, common.NewError(common.ErrorInvalidInput, "Product ID is required")
	}
	if quantity < 1 {
		return 0, common.NewError(common.ErrorInvalidInput, msgInvalidQuantity)
	}
	if quantity > models.MaxCartQuantity {
		return 0, common.NewError(common.ErrorInvalidInput, msgQuantityLimit)
	}
	if _, err := s.activeProduct(ctx, s.db, productID); err != nil {
		return 0, err
	}
	total, err := s.repomanager.Carts(s.db).Add(ctx, userID, productID, quantity)
	if errors.Is(err, carts.ErrQuantityLimit) {
		return 0, common.NewError(common.ErrorInvalidInput, msgQuantityLimit)
	}
	if err != nil {
		return 0, productNotFound(err, "adding to cart")
	}
	return total, nil
}

// RemoveFromCart deletes one line; a missing line is not an error.
func (s *EntitlementService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	if err := s.repomanager.Carts(s.db).Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("error removing cart line: %w", err)
	}
	return nil
}

// ClearCart deletes every line of the user's cart.
func (s *EntitlementService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repomanager.Carts(s.db).Clear(ctx, userID); err != nil {
		return fmt.Errorf("error clearing cart: %w", err)
	}
	return nil
}

// Cart returns the lines of active products joined with current product data.
func (s *EntitlementService) Cart(ctx context.Context, userID string) ([]*models.CartItem, error) {
	items, err := s.repomanager.Carts(s.db).Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading cart: %w", err)
	}
	return items, nil
}

// Checkout empties the cart and turns its lines into paid orders, one per
// unit at the current product price, in a single transaction. Lines for
// products that are no longer active are dropped. A cart with no active
// lines fails with "Cart is empty" and is left untouched.
func (s *EntitlementService) Checkout(ctx context.Context, userID string) ([]*models.Order, error) {
	var created []*models.Order

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		items, err := s.repomanager.Carts(tx).Drain(ctx, userID)
		if err != nil {
			return fmt.Errorf("error draining cart: %w", err)
		}
		if len(items) == 0 {
			return common.NewError(common.ErrorInvalidInput, msgCartEmpty)
		}

		orders := s.repomanager.Orders(tx)
		for _, it := range items {
			for i := 0; i < it.Quantity; i++ {
				o, err := orders.Create(ctx, &models.Order{
					UserID:    userID,
					ProductID: it.ProductID,
					VendorID:  it.VendorID,
					Price:     it.Price,
				})
				if err != nil {
					return fmt.Errorf("error recording order: %w", err)
				}
				created = append(created, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

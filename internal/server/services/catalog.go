package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

const msgProductNotFound = "Product not found"

// ProductInput holds the creation-time fields of a product. Every field is
// required; Price is a pointer so that an absent price differs from zero.
type ProductInput struct {
	Title       string
	Description string
	Price       *decimal.Decimal
	Category    string
	ImageURL    string
	OriginalURL string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.Price == nil ||
		strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.ImageURL) == "" || strings.TrimSpace(in.OriginalURL) == "" {
		return common.NewError(common.ErrorInvalidInput, "Title, description, price, category, image_url and original_url are required")
	}
	if in.Price.IsNegative() {
		return common.NewError(common.ErrorInvalidInput, "Price must not be negative")
	}
	return nil
}

// CatalogService owns product records and their visibility rules.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

// Create lists a new active product owned by vendorID.
func (s *CatalogService) Create(ctx context.Context, vendorID string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Products(s.db).Create(ctx, &models.Product{
		VendorID:    vendorID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       *in.Price,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
		OriginalURL: in.OriginalURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return p, nil
}

// loadMutable returns the active product or NotFound, then applies the
// ownership rule. Existence is reported before ownership.
func (s *CatalogService) loadMutable(ctx context.Context, id string, actor *policy.Actor) (*models.Product, error) {
	p, err := s.repomanager.Products(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
		}
		return nil, fmt.Errorf("error loading product: %w", err)
	}
	if p.Status != models.ProductActive {
		return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
	}
	if err := policy.Allow(actor, policy.ProductMutate, policy.Resource{VendorID: p.VendorID}); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial patch to an active product owned by actor (or
// any product when actor is an admin).
func (s *CatalogService) Update(ctx context.Context, id string, actor *policy.Actor, patch models.ProductPatch) error {
	if patch.Empty() {
		return common.NewError(common.ErrorInvalidInput, "No fields to update")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return common.NewError(common.ErrorInvalidInput, "Price must not be negative")
	}
	if patch.Status != nil && *patch.Status != models.ProductActive && *patch.Status != models.ProductRemoved {
		return common.NewError(common.ErrorInvalidInput, "Invalid status")
	}
	if _, err := s.loadMutable(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repomanager.Products(s.db).Update(ctx, id, patch); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgProductNotFound)
		}
		return fmt.Errorf("error updating product: %w", err)
	}
	return nil
}

// Remove hard-deletes an active product under the same rules as Update.
func (s *CatalogService) Remove(ctx context.Context, id string, actor *policy.Actor) error {
	if _, err := s.loadMutable(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repomanager.Products(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgProductNotFound)
		}
		return fmt.Errorf("error deleting product: %w", err)
	}
	return nil
}

// Get returns an active product.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repomanager.Products(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
		}
		return nil, fmt.Errorf("error loading product: %w", err)
	}
	if p.Status != models.ProductActive {
		return nil, common.NewError(common.ErrorNotFound, msgProductNotFound)
	}
	return p, nil
}

// ListAll returns active products, newest first, with vendor names.
func (s *CatalogService) ListAll(ctx context.Context) ([]*models.Product, error) {
	list, err := s.repomanager.Products(s.db).ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return list, nil
}

// ListEverything returns products of any status for administration.
func (s *CatalogService) ListEverything(ctx context.Context) ([]*models.Product, error) {
	list, err := s.repomanager.Products(s.db).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return list, nil
}

// ListByVendor returns all of a vendor's products regardless of status.
func (s *CatalogService) ListByVendor(ctx context.Context, vendorID string) ([]*models.Product, error) {
	list, err := s.repomanager.Products(s.db).ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("error listing vendor products: %w", err)
	}
	return list, nil
}

// Search finds active products whose title or description contains query.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewError(common.ErrorInvalidInput, "Search query is required")
	}
	list, err := s.repomanager.Products(s.db).Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error searching products: %w", err)
	}
	return list, nil
}

// ListCategories returns distinct categories of active products, ascending.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := s.repomanager.Products(s.db).Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return cats, nil
}

package products

import (
	"context"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*models.Product, error)
	ListByVendor(ctx context.Context, vendorID string) ([]*models.Product, error)
	ListAll(ctx context.Context) ([]*models.Product, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

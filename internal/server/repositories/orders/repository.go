package orders

import (
	"context"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Order, error)
	Analytics(ctx context.Context) (*models.OrderAnalytics, error)
}

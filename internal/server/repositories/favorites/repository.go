package favorites

import (
	"context"
	"encoding/json"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID, productID string, snapshot json.RawMessage) error
	Remove(ctx context.Context, userID, productID string) error
	Exists(ctx context.Context, userID, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]*models.Favorite, error)
}

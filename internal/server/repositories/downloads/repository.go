package downloads

import (
	"context"
	"encoding/json"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID, productID string, snapshot json.RawMessage) error
	List(ctx context.Context, userID string) ([]*models.Download, error)
}

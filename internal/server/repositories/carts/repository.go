package carts

import (
	"context"
	"errors"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// ErrQuantityLimit is returned by Add when the line would exceed
// models.MaxCartQuantity.
var ErrQuantityLimit = errors.New("cart line quantity limit reached")

type Repository interface {
	Add(ctx context.Context, userID, productID string, quantity int) (int, error)
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
	Items(ctx context.Context, userID string) ([]*models.CartItem, error)
	Drain(ctx context.Context, userID string) ([]*models.CartItem, error)
}

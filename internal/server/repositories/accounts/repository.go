package accounts

import (
	"context"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error)
	CompareAndSetStatus(ctx context.Context, id string, from, to models.Status) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateProfile(ctx context.Context, id, name, email string, profilePicURL *string) error
}

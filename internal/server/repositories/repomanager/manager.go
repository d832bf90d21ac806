package repomanager

import (
	"context"
	"database/sql"

	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/accounts"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/carts"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/downloads"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/favorites"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/orders"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/products"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/stats"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Products(db dbx.DBTX) products.Repository
	Favorites(db dbx.DBTX) favorites.Repository
	Downloads(db dbx.DBTX) downloads.Repository
	Carts(db dbx.DBTX) carts.Repository
	Orders(db dbx.DBTX) orders.Repository
	Stats(db dbx.DBTX) stats.Repository
}

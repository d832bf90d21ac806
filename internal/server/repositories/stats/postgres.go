package stats

import (
	"context"

	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
)

// PostgresRepository reads aggregate counters over a dbx.DBTX. It never writes.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Platform(ctx context.Context) (*PlatformCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM accounts WHERE role = 'user'),
			(SELECT COUNT(*) FROM accounts WHERE role = 'vendor'),
			(SELECT COUNT(*) FROM products WHERE status = 'active'),
			(SELECT COUNT(*) FROM user_downloads)`

	c := &PlatformCounts{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&c.Users, &c.Vendors, &c.Products, &c.Downloads); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return c, nil
}

// Vendor counts active products and downloads of the vendor's products.
// An unknown vendor yields zero counts and a nil member-since date.
func (r *PostgresRepository) Vendor(ctx context.Context, vendorID string) (*VendorCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE vendor_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM user_downloads d JOIN products p ON p.id = d.product_id WHERE p.vendor_id = $1),
			(SELECT created_at FROM accounts WHERE id = $1)`

	c := &VendorCounts{}
	if err := r.db.QueryRowContext(ctx, query, vendorID).Scan(&c.Products, &c.Downloads, &c.MemberSince); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return c, nil
}

// User counts the user's downloads and favorites.
func (r *PostgresRepository) User(ctx context.Context, userID string) (*UserCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM user_downloads WHERE user_id = $1),
			(SELECT COUNT(*) FROM user_favorites WHERE user_id = $1),
			(SELECT created_at FROM accounts WHERE id = $1)`

	c := &UserCounts{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.Downloads, &c.Favorites, &c.MemberSince); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return c, nil
}

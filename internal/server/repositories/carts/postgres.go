package carts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// PostgresRepository implements cart storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts a cart line or increments an existing one by quantity in a
// single statement, and returns the resulting quantity. An increment that
// would take the line past models.MaxCartQuantity changes nothing and
// returns ErrQuantityLimit.
func (r *PostgresRepository) Add(ctx context.Context, userID, productID string, quantity int) (int, error) {
	query := `
		INSERT INTO user_carts (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = user_carts.quantity + EXCLUDED.quantity
		WHERE user_carts.quantity + EXCLUDED.quantity <= $4
		RETURNING quantity`

	var total int
	err := r.db.QueryRowContext(ctx, query, userID, productID, quantity, models.MaxCartQuantity).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrQuantityLimit
	}
	if err != nil {
		return 0, dbx.TranslateError(err)
	}
	return total, nil
}

// Remove deletes one line. A missing line, or a malformed product id, is
// not an error.
func (r *PostgresRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM user_carts WHERE user_id = $1 AND product_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		if err = dbx.TranslateError(err); errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_carts WHERE user_id = $1`, userID); err != nil {
		return dbx.TranslateError(err)
	}
	return nil
}

// Items returns the cart lines of active products joined with current
// product data.
func (r *PostgresRepository) Items(ctx context.Context, userID string) ([]*models.CartItem, error) {
	query := `
		SELECT c.product_id, c.quantity, p.title, p.price, p.image_url, p.vendor_id
		FROM user_carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1 AND p.status = 'active'
		ORDER BY c.added_at DESC`

	return r.scanItems(ctx, query, userID)
}

// Drain deletes every line of the user's cart and returns the ones that
// refer to active products. The DELETE locks the rows it removes, so a
// concurrent Drain of the same cart waits and then finds nothing, and a
// line added after the statement started is left in place.
func (r *PostgresRepository) Drain(ctx context.Context, userID string) ([]*models.CartItem, error) {
	query := `
		WITH drained AS (
			DELETE FROM user_carts
			WHERE user_id = $1
			RETURNING product_id, quantity, added_at
		)
		SELECT d.product_id, d.quantity, p.title, p.price, p.image_url, p.vendor_id
		FROM drained d
		JOIN products p ON p.id = d.product_id
		WHERE p.status = 'active'
		ORDER BY d.added_at DESC`

	return r.scanItems(ctx, query, userID)
}

func (r *PostgresRepository) scanItems(ctx context.Context, query string, args ...any) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []*models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Title, &it.Price, &it.ImageURL, &it.VendorID); err != nil {
			return nil, dbx.TranslateError(err)
		}
		result = append(result, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

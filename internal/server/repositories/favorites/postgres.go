package favorites

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// PostgresRepository implements favorites storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts the favorite; an existing (user, product) pair is left as is.
func (r *PostgresRepository) Add(ctx context.Context, userID, productID string, snapshot json.RawMessage) error {
	query := `
		INSERT INTO user_favorites (user_id, product_id, image_data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, productID, nullableJSON(snapshot)); err != nil {
		return dbx.TranslateError(err)
	}
	return nil
}

// Remove deletes the favorite; absence is not an error.
func (r *PostgresRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM user_favorites WHERE user_id = $1 AND product_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		if err = dbx.TranslateError(err); errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Exists reports whether the pair is bookmarked. A malformed product id is
// never bookmarked.
func (r *PostgresRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND product_id = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&ok); err != nil {
		if err = dbx.TranslateError(err); errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// List returns the user's favorites, most recent first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	query := `SELECT user_id, product_id, image_data, created_at FROM user_favorites
		WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []*models.Favorite{}
	for rows.Next() {
		var (
			f    models.Favorite
			snap []byte
		)
		if err := rows.Scan(&f.UserID, &f.ProductID, &snap, &f.CreatedAt); err != nil {
			return nil, dbx.TranslateError(err)
		}
		f.Snapshot = snap
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

func nullableJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}

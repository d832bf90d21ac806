package downloads

import (
	"context"
	"encoding/json"

	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// PostgresRepository implements download history over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert records a download. Re-downloading refreshes the timestamp and
// snapshot of the existing row.
func (r *PostgresRepository) Upsert(ctx context.Context, userID, productID string, snapshot json.RawMessage) error {
	query := `
		INSERT INTO user_downloads (user_id, product_id, image_data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET downloaded_at = now(), image_data = COALESCE(EXCLUDED.image_data, user_downloads.image_data)`

	var arg any
	if len(snapshot) > 0 {
		arg = []byte(snapshot)
	}
	if _, err := r.db.ExecContext(ctx, query, userID, productID, arg); err != nil {
		return dbx.TranslateError(err)
	}
	return nil
}

// List returns the user's downloads, most recent first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Download, error) {
	query := `SELECT user_id, product_id, image_data, downloaded_at FROM user_downloads
		WHERE user_id = $1 ORDER BY downloaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []*models.Download{}
	for rows.Next() {
		var (
			d    models.Download
			snap []byte
		)
		if err := rows.Scan(&d.UserID, &d.ProductID, &snap, &d.DownloadedAt); err != nil {
			return nil, dbx.TranslateError(err)
		}
		d.Snapshot = snap
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// Product reads join the owning vendor's name; a missing vendor yields NULL.
const selectProducts = `
	SELECT p.id, p.vendor_id, a.name, p.title, p.description, p.price, p.category,
	       p.image_url, p.original_url, p.status, p.created_at
	FROM products p
	LEFT JOIN accounts a ON a.id = p.vendor_id`

// PostgresRepository implements product storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	p := &models.Product{}
	err := s.Scan(&p.ID, &p.VendorID, &p.VendorName, &p.Title, &p.Description, &p.Price, &p.Category,
		&p.ImageURL, &p.OriginalURL, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dbx.TranslateError(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

// Create inserts an active product and fills in its id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (vendor_id, title, description, price, category, image_url, original_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
		 RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.VendorID, p.Title, p.Description, p.Price, p.Category, p.ImageURL, p.OriginalURL,
	).Scan(&p.ID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return p, nil
}

// GetByID returns the product regardless of status.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProducts+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return p, nil
}

// Update applies the non-nil fields of patch in one statement.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	var (
		sets []string
		args = []any{id}
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.OriginalURL != nil {
		add("original_url", *patch.OriginalURL)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(sets) == 0 {
		return common.ErrorInvalidInput
	}

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbx.TranslateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete hard-deletes the product. Favorites, downloads and cart lines
// referencing it are removed by the foreign key cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return dbx.TranslateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListActive returns active products, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, selectProducts+` WHERE p.status = 'active' ORDER BY p.created_at DESC`)
}

// ListByVendor returns every product of the vendor, any status.
func (r *PostgresRepository) ListByVendor(ctx context.Context, vendorID string) ([]*models.Product, error) {
	return r.list(ctx, selectProducts+` WHERE p.vendor_id = $1 ORDER BY p.created_at DESC`, vendorID)
}

// ListAll returns every product for administration.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, selectProducts+` ORDER BY p.created_at DESC`)
}

// Search matches query case-insensitively against title or description of
// active products.
func (r *PostgresRepository) Search(ctx context.Context, query string) ([]*models.Product, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.list(ctx, selectProducts+
		` WHERE p.status = 'active' AND (p.title ILIKE $1 OR p.description ILIKE $1)
		  ORDER BY p.created_at DESC`, pattern)
}

// Categories returns the distinct non-empty categories of active products.
func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products
		WHERE status = 'active' AND category <> ''
		ORDER BY category ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, dbx.TranslateError(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

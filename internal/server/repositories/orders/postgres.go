package orders

import (
	"context"

	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	monthsInTrend  = 12
	topProductsMax = 5
)

// PostgresRepository implements the append-only order ledger over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a paid order.
func (r *PostgresRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	query :=
		`INSERT INTO orders (user_id, product_id, vendor_id, price, status)
		 VALUES ($1, $2, $3, $4, 'paid')
		 RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query, o.UserID, o.ProductID, o.VendorID, o.Price).
		Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `SELECT id, user_id, product_id, vendor_id, price, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()

	result := []*models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.VendorID, &o.Price, &o.Status, &o.CreatedAt); err != nil {
			return nil, dbx.TranslateError(err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return result, nil
}

// Analytics derives sales figures strictly from the order ledger. Empty
// ledgers yield zero totals and empty slices.
func (r *PostgresRepository) Analytics(ctx context.Context) (*models.OrderAnalytics, error) {
	a := &models.OrderAnalytics{
		TotalRevenue: decimal.Zero,
		SalesByMonth: []models.MonthlySales{},
		TopProducts:  []models.ProductSales{},
	}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM orders`).
		Scan(&a.TotalSales, &a.TotalRevenue)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}

	monthly := `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*), COALESCE(SUM(price), 0)
		FROM orders
		GROUP BY month
		ORDER BY month DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, monthly, monthsInTrend)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	for rows.Next() {
		var m models.MonthlySales
		if err := rows.Scan(&m.Month, &m.Sales, &m.Revenue); err != nil {
			rows.Close()
			return nil, dbx.TranslateError(err)
		}
		a.SalesByMonth = append(a.SalesByMonth, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, dbx.TranslateError(err)
	}
	rows.Close()

	// Orders keep no FK to products; deleted products report an empty title.
	top := `
		SELECT COALESCE(p.title, ''), COUNT(*) AS sales, COALESCE(SUM(o.price), 0) AS revenue
		FROM orders o
		LEFT JOIN products p ON p.id = o.product_id
		GROUP BY o.product_id, p.title
		ORDER BY sales DESC, revenue DESC
		LIMIT $1`
	rows, err = r.db.QueryContext(ctx, top, topProductsMax)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.ProductSales
		if err := rows.Scan(&p.Title, &p.Sales, &p.Revenue); err != nil {
			return nil, dbx.TranslateError(err)
		}
		a.TopProducts = append(a.TopProducts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.TranslateError(err)
	}

	return a, nil
}

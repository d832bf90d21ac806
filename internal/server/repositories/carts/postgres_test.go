package carts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const addQuery = `(?s)INSERT INTO user_carts.*DO UPDATE SET quantity = user_carts.quantity \+ EXCLUDED.quantity\s+WHERE user_carts.quantity \+ EXCLUDED.quantity <= \$4\s+RETURNING quantity$`

func TestAdd_Increments(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(addQuery).WithArgs("u1", "p1", 2, models.MaxCartQuantity).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	mock.ExpectQuery(addQuery).WithArgs("u1", "p1", 3, models.MaxCartQuantity).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(5))

	q, err := repo.Add(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, q)

	q, err = repo.Add(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, q)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_UnknownProduct(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(addQuery).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Add(context.Background(), "u1", "gone", 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAdd_QuantityLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// the conflict WHERE rejects the update, so no row comes back
	mock.ExpectQuery(addQuery).WithArgs("u1", "p1", 5, models.MaxCartQuantity).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

	_, err := repo.Add(context.Background(), "u1", "p1", 5)
	assert.ErrorIs(t, err, ErrQuantityLimit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_CheckViolationIsDBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(addQuery).WillReturnError(&pgconn.PgError{Code: "23514"})

	_, err := repo.Add(context.Background(), "u1", "p1", 500)
	assert.ErrorContains(t, err, "db error")
}

func TestRemoveAndClear(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM user_carts WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs("u1", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_carts WHERE user_id = \$1$`).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Remove(context.Background(), "u1", "p1"))
	require.NoError(t, repo.Clear(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove_MalformedIDIsAbsent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM user_carts WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs("u1", "abc").WillReturnError(&pgconn.PgError{Code: "22P02"})

	require.NoError(t, repo.Remove(context.Background(), "u1", "abc"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItems(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM user_carts c\s+JOIN products p ON p.id = c.product_id\s+WHERE c.user_id = \$1 AND p.status = 'active'`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "title", "price", "image_url", "vendor_id"}).
			AddRow("p1", 3, "Sunset", "4.00", "http://i", "v1"))

	items, err := repo.Items(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(4)))
}

func TestDrain_DeletesAndReturnsActiveLines(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WITH drained AS \(\s*DELETE FROM user_carts\s+WHERE user_id = \$1\s+RETURNING product_id, quantity, added_at\s*\).*FROM drained d\s+JOIN products p ON p.id = d.product_id\s+WHERE p.status = 'active'`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "title", "price", "image_url", "vendor_id"}).
			AddRow("p1", 2, "Sunset", "1.50", "http://i", "v1"))

	items, err := repo.Drain(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrain_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WITH drained AS`).WithArgs("u1").WillReturnError(errors.New("boom"))

	_, err := repo.Drain(context.Background(), "u1")
	assert.ErrorContains(t, err, "db error")
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrder_AppendsDuplicates(t *testing.T) {
	db, _ := newSQLMockDB(t)
	st := newMemStore()
	s := NewOrderService(db, &memManager{st})
	ctx := context.Background()

	price := decimal.RequireFromString("4.99")
	o1, err := s.RecordOrder(ctx, "alice", "p1", "bob", price)
	require.NoError(t, err)
	o2, err := s.RecordOrder(ctx, "alice", "p1", "bob", price)
	require.NoError(t, err)

	assert.NotEqual(t, o1.ID, o2.ID)
	assert.Equal(t, models.OrderStatusPaid, o1.Status)
	assert.Len(t, st.orders, 2)

	_, err = s.RecordOrder(ctx, "alice", "p1", "bob", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	history, err := s.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, o2.ID, history[0].ID)
}

func TestPurchase_UsesCatalogPrice(t *testing.T) {
	db, _ := newSQLMockDB(t)
	st := newMemStore()
	m := &memManager{st}
	s := NewOrderService(db, m)
	cat := NewCatalogService(db, m)
	ctx := context.Background()

	p, err := cat.Create(ctx, "bob", productInput("Sunset", "7.25"))
	require.NoError(t, err)

	o, err := s.Purchase(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", o.VendorID)
	assert.True(t, o.Price.Equal(decimal.RequireFromString("7.25")))

	_, err = s.Purchase(ctx, "alice", "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Purchase(ctx, "alice", "")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestStats(t *testing.T) {
	db, _ := newSQLMockDB(t)
	st := newMemStore()
	m := &memManager{st}
	stats := NewStatsService(db, m)
	cat := NewCatalogService(db, m)
	ent := NewEntitlementService(db, m)
	ctx := context.Background()

	st.accounts["bob"] = &models.Account{ID: "bob", Name: "Bob", Role: models.RoleVendor, CreatedAt: st.tick()}
	st.accounts["alice"] = &models.Account{ID: "alice", Name: "Alice", Role: models.RoleUser, CreatedAt: st.tick()}

	free, err := cat.Create(ctx, "bob", productInput("Free", "0"))
	require.NoError(t, err)
	_, err = cat.Create(ctx, "bob", productInput("Paid", "3"))
	require.NoError(t, err)
	require.NoError(t, ent.AddDownload(ctx, "alice", free.ID, snap))
	require.NoError(t, ent.AddFavorite(ctx, "alice", free.ID, snap))

	p, err := stats.Platform(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.TotalUsers)
	assert.Equal(t, int64(1), p.TotalVendors)
	assert.Equal(t, int64(2), p.TotalProducts)
	assert.True(t, p.TotalRevenue.Equal(decimal.RequireFromString("2.99")))

	v, err := stats.Vendor(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Products)
	assert.Equal(t, int64(1), v.Sales)
	assert.Equal(t, 4.5, v.Rating)
	assert.True(t, v.Earnings.Equal(decimal.RequireFromString("2.99")))
	assert.Equal(t, "January 2025", v.MemberSince)

	u, err := stats.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.UserStats{Downloads: 1, Favorites: 1, MemberSince: "January 2025"}, u)
}

func TestStats_EmptyDefaults(t *testing.T) {
	db, _ := newSQLMockDB(t)
	stats := NewStatsService(db, &memManager{newMemStore()})
	ctx := context.Background()

	v, err := stats.Vendor(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, v.Products)
	assert.True(t, v.Earnings.IsZero())
	assert.Equal(t, models.UnknownDate, v.MemberSince)

	u, err := stats.User(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, models.UnknownDate, u.MemberSince)

	a, err := stats.OrderAnalytics(ctx)
	require.NoError(t, err)
	assert.Zero(t, a.TotalSales)
	assert.Empty(t, a.TopProducts)
}

func TestStats_StoreError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	st := newMemStore()
	st.failWith = errors.New("db error: boom")
	stats := NewStatsService(db, &memManager{st})

	_, err := stats.Platform(context.Background())
	assert.ErrorContains(t, err, "boom")
}

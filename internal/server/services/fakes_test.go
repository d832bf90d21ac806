package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/dbx"
	"github.com/sayedsafi2000/pixelsbee/internal/server/config"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/accounts"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/carts"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/downloads"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/favorites"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/orders"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/products"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/stats"
	"github.com/shopspring/decimal"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:               "k",
		SessionValidityDuration: 7 * 24 * time.Hour,
	}
}

type pair struct{ user, product string }

type cartLine struct {
	quantity int
	added    time.Time
}

// memStore is an in-memory stand-in for the database with the same upsert
// and cascade semantics as the Postgres schema.
type memStore struct {
	mu        sync.Mutex
	seq       int
	clock     time.Time
	accounts  map[string]*models.Account
	products  map[string]*models.Product
	favorites map[pair]*models.Favorite
	downloads map[pair]*models.Download
	carts     map[pair]*cartLine
	orders    []*models.Order

	// failWith, when set, is returned by every repository call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		accounts:  map[string]*models.Account{},
		products:  map[string]*models.Product{},
		favorites: map[pair]*models.Favorite{},
		downloads: map[pair]*models.Download{},
		carts:     map[pair]*cartLine{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

type memManager struct{ s *memStore }

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Accounts(dbx.DBTX) accounts.Repository       { return memAccounts{m.s} }
func (m *memManager) Products(dbx.DBTX) products.Repository       { return memProducts{m.s} }
func (m *memManager) Favorites(dbx.DBTX) favorites.Repository     { return memFavorites{m.s} }
func (m *memManager) Downloads(dbx.DBTX) downloads.Repository     { return memDownloads{m.s} }
func (m *memManager) Carts(dbx.DBTX) carts.Repository             { return memCarts{m.s} }
func (m *memManager) Orders(dbx.DBTX) orders.Repository           { return memOrders{m.s} }
func (m *memManager) Stats(dbx.DBTX) stats.Repository             { return memStats{m.s} }

// --- accounts ---

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, x := range r.s.accounts {
		if x.Email == a.Email {
			return nil, common.ErrorConflict
		}
	}
	a.ID = r.s.nextID("acc-")
	a.CreatedAt = r.s.tick()
	cp := *a
	r.s.accounts[a.ID] = &cp
	return a, nil
}

func (r memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, a := range r.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memAccounts) ListByRole(_ context.Context, role models.Role) ([]*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	var out []*models.Account
	for _, a := range r.s.accounts {
		if a.Role == role {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memAccounts) CompareAndSetStatus(_ context.Context, id string, from, to models.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	a, ok := r.s.accounts[id]
	if !ok || a.Status != from {
		return common.ErrorConflict
	}
	a.Status = to
	return nil
}

func (r memAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r memAccounts) UpdateProfile(_ context.Context, id, name, email string, pic *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, x := range r.s.accounts {
		if x.ID != id && x.Email == email {
			return common.ErrorConflict
		}
	}
	a.Name, a.Email, a.ProfilePicURL = name, email, pic
	return nil
}

// --- products ---

type memProducts struct{ s *memStore }

func (r memProducts) withVendor(p *models.Product) *models.Product {
	cp := *p
	cp.VendorName = nil
	if v, ok := r.s.accounts[p.VendorID]; ok {
		name := v.Name
		cp.VendorName = &name
	}
	return &cp
}

func (r memProducts) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	p.ID = r.s.nextID("prod-")
	p.Status = models.ProductActive
	p.CreatedAt = r.s.tick()
	cp := *p
	r.s.products[p.ID] = &cp
	return p, nil
}

func (r memProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withVendor(p), nil
}

func (r memProducts) Update(_ context.Context, id string, patch models.ProductPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return common.ErrorNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.OriginalURL != nil {
		p.OriginalURL = *patch.OriginalURL
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	return nil
}

func (r memProducts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.products, id)
	for k := range r.s.favorites {
		if k.product == id {
			delete(r.s.favorites, k)
		}
	}
	for k := range r.s.downloads {
		if k.product == id {
			delete(r.s.downloads, k)
		}
	}
	for k := range r.s.carts {
		if k.product == id {
			delete(r.s.carts, k)
		}
	}
	return nil
}

func (r memProducts) filter(keep func(*models.Product) bool) ([]*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := []*models.Product{}
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, r.withVendor(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memProducts) ListActive(context.Context) ([]*models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.Status == models.ProductActive })
}

func (r memProducts) ListByVendor(_ context.Context, vendorID string) ([]*models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.VendorID == vendorID })
}

func (r memProducts) ListAll(context.Context) ([]*models.Product, error) {
	return r.filter(func(*models.Product) bool { return true })
}

func (r memProducts) Search(_ context.Context, q string) ([]*models.Product, error) {
	q = strings.ToLower(q)
	return r.filter(func(p *models.Product) bool {
		return p.Status == models.ProductActive &&
			(strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q))
	})
}

func (r memProducts) Categories(context.Context) ([]string, error) {
	list, err := r.ListActive(context.Background())
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, p := range list {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- favorites ---

type memFavorites struct{ s *memStore }

func (r memFavorites) Add(_ context.Context, userID, productID string, snap json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if _, ok := r.s.products[productID]; !ok {
		return common.ErrorNotFound
	}
	k := pair{userID, productID}
	if _, ok := r.s.favorites[k]; ok {
		return nil
	}
	r.s.favorites[k] = &models.Favorite{UserID: userID, ProductID: productID, Snapshot: snap, CreatedAt: r.s.tick()}
	return nil
}

func (r memFavorites) Remove(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favorites, pair{userID, productID})
	return nil
}

func (r memFavorites) Exists(_ context.Context, userID, productID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return false, r.s.failWith
	}
	_, ok := r.s.favorites[pair{userID, productID}]
	return ok, nil
}

func (r memFavorites) List(_ context.Context, userID string) ([]*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Favorite{}
	for k, f := range r.s.favorites {
		if k.user == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- downloads ---

type memDownloads struct{ s *memStore }

func (r memDownloads) Upsert(_ context.Context, userID, productID string, snap json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[productID]; !ok {
		return common.ErrorNotFound
	}
	k := pair{userID, productID}
	if d, ok := r.s.downloads[k]; ok {
		d.DownloadedAt = r.s.tick()
		d.Snapshot = snap
		return nil
	}
	r.s.downloads[k] = &models.Download{UserID: userID, ProductID: productID, Snapshot: snap, DownloadedAt: r.s.tick()}
	return nil
}

func (r memDownloads) List(_ context.Context, userID string) ([]*models.Download, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Download{}
	for k, d := range r.s.downloads {
		if k.user == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DownloadedAt.After(out[j].DownloadedAt) })
	return out, nil
}

// --- carts ---

type memCarts struct{ s *memStore }

func (r memCarts) Add(_ context.Context, userID, productID string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	if _, ok := r.s.products[productID]; !ok {
		return 0, common.ErrorNotFound
	}
	k := pair{userID, productID}
	if l, ok := r.s.carts[k]; ok {
		if l.quantity+qty > models.MaxCartQuantity {
			return 0, carts.ErrQuantityLimit
		}
		l.quantity += qty
		return l.quantity, nil
	}
	r.s.carts[k] = &cartLine{quantity: qty, added: r.s.tick()}
	return qty, nil
}

func (r memCarts) Remove(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, pair{userID, productID})
	return nil
}

func (r memCarts) Clear(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.carts {
		if k.user == userID {
			delete(r.s.carts, k)
		}
	}
	return nil
}

func (r memCarts) Items(_ context.Context, userID string) ([]*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	return r.activeLines(userID), nil
}

// Drain has no transaction to roll back, so a drain that finds no active
// lines leaves the cart as the failed checkout would.
func (r memCarts) Drain(_ context.Context, userID string) ([]*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := r.activeLines(userID)
	if len(out) == 0 {
		return out, nil
	}
	for k := range r.s.carts {
		if k.user == userID {
			delete(r.s.carts, k)
		}
	}
	return out, nil
}

func (r memCarts) activeLines(userID string) []*models.CartItem {
	type row struct {
		item  *models.CartItem
		added time.Time
	}
	var rows []row
	for k, l := range r.s.carts {
		p, ok := r.s.products[k.product]
		if k.user != userID || !ok || p.Status != models.ProductActive {
			continue
		}
		rows = append(rows, row{&models.CartItem{
			ProductID: p.ID, Quantity: l.quantity, Title: p.Title, Price: p.Price, ImageURL: p.ImageURL, VendorID: p.VendorID,
		}, l.added})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].added.After(rows[j].added) })
	out := []*models.CartItem{}
	for _, row := range rows {
		out = append(out, row.item)
	}
	return out
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	o.ID = r.s.nextID("ord-")
	o.Status = models.OrderStatusPaid
	o.CreatedAt = r.s.tick()
	cp := *o
	r.s.orders = append(r.s.orders, &cp)
	return o, nil
}

func (r memOrders) ListByUser(_ context.Context, userID string) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if r.s.orders[i].UserID == userID {
			cp := *r.s.orders[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memOrders) Analytics(context.Context) (*models.OrderAnalytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	a := &models.OrderAnalytics{TotalRevenue: decimal.Zero, SalesByMonth: []models.MonthlySales{}, TopProducts: []models.ProductSales{}}
	months := map[string]*models.MonthlySales{}
	top := map[string]*models.ProductSales{}
	for _, o := range r.s.orders {
		a.TotalSales++
		a.TotalRevenue = a.TotalRevenue.Add(o.Price)
		m := o.CreatedAt.Format("2006-01")
		if months[m] == nil {
			months[m] = &models.MonthlySales{Month: m, Revenue: decimal.Zero}
		}
		months[m].Sales++
		months[m].Revenue = months[m].Revenue.Add(o.Price)
		if top[o.ProductID] == nil {
			title := ""
			if p, ok := r.s.products[o.ProductID]; ok {
				title = p.Title
			}
			top[o.ProductID] = &models.ProductSales{Title: title, Revenue: decimal.Zero}
		}
		top[o.ProductID].Sales++
		top[o.ProductID].Revenue = top[o.ProductID].Revenue.Add(o.Price)
	}
	for _, m := range months {
		a.SalesByMonth = append(a.SalesByMonth, *m)
	}
	sort.Slice(a.SalesByMonth, func(i, j int) bool { return a.SalesByMonth[i].Month > a.SalesByMonth[j].Month })
	for _, p := range top {
		a.TopProducts = append(a.TopProducts, *p)
	}
	sort.Slice(a.TopProducts, func(i, j int) bool { return a.TopProducts[i].Sales > a.TopProducts[j].Sales })
	if len(a.TopProducts) > 5 {
		a.TopProducts = a.TopProducts[:5]
	}
	return a, nil
}

// --- stats ---

type memStats struct{ s *memStore }

func (r memStats) Platform(context.Context) (*stats.PlatformCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	c := &stats.PlatformCounts{Downloads: int64(len(r.s.downloads))}
	for _, a := range r.s.accounts {
		switch a.Role {
		case models.RoleUser:
			c.Users++
		case models.RoleVendor:
			c.Vendors++
		}
	}
	for _, p := range r.s.products {
		if p.Status == models.ProductActive {
			c.Products++
		}
	}
	return c, nil
}

func (r memStats) Vendor(_ context.Context, vendorID string) (*stats.VendorCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := &stats.VendorCounts{}
	for _, p := range r.s.products {
		if p.VendorID == vendorID && p.Status == models.ProductActive {
			c.Products++
		}
	}
	for k := range r.s.downloads {
		if p, ok := r.s.products[k.product]; ok && p.VendorID == vendorID {
			c.Downloads++
		}
	}
	if a, ok := r.s.accounts[vendorID]; ok {
		t := a.CreatedAt
		c.MemberSince = &t
	}
	return c, nil
}

func (r memStats) User(_ context.Context, userID string) (*stats.UserCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := &stats.UserCounts{}
	for k := range r.s.downloads {
		if k.user == userID {
			c.Downloads++
		}
	}
	for k := range r.s.favorites {
		if k.user == userID {
			c.Favorites++
		}
	}
	if a, ok := r.s.accounts[userID]; ok {
		t := a.CreatedAt
		c.MemberSince = &t
	}
	return c, nil
}

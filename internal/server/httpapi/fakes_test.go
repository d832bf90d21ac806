package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/logging"
	"github.com/sayedsafi2000/pixelsbee/internal/server/metrics"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"
	"github.com/shopspring/decimal"
)

var (
	alice = &policy.Actor{ID: "u-alice", Role: models.RoleUser}
	bob   = &policy.Actor{ID: "v-bob", Role: models.RoleVendor}
	root  = &policy.Actor{ID: "a-root", Role: models.RoleAdmin}
)

func actorByName(name string) *policy.Actor {
	return map[string]*policy.Actor{"alice": alice, "bob": bob, "root": root}[name]
}

// fakeAccounts resolves "tok-<id>" for the known actors. Methods the
// embedded interface leaves nil panic when a test reaches them unexpectedly.
type fakeAccounts struct {
	Accounts
	resolveErr error
	register   func(in services.RegisterInput) (*services.RegisterResult, error)
	login      func(email, password string) (*services.LoginResult, error)
	approved   []string
	profile    *models.AccountView
}

func (f *fakeAccounts) Resolve(_ context.Context, token string) (*policy.Actor, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	for _, a := range []*policy.Actor{alice, bob, root} {
		if token == "tok-"+a.ID {
			return a, nil
		}
	}
	return nil, common.NewError(common.ErrorUnauthorized, "Invalid token")
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*services.RegisterResult, error) {
	return f.register(in)
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	return f.login(email, password)
}

func (f *fakeAccounts) ApproveVendor(_ context.Context, id string) error {
	if id != "v-bob" {
		return common.NewError(common.ErrorNotFound, "Vendor not found")
	}
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeAccounts) Profile(_ context.Context, id string) (*models.AccountView, error) {
	if f.profile == nil || f.profile.ID != id {
		return nil, common.NewError(common.ErrorNotFound, "User not found")
	}
	return f.profile, nil
}

type fakeCatalog struct {
	Catalog
	products  map[string]*models.Product
	lastCtx   context.Context
	updatedBy *policy.Actor
	patch     models.ProductPatch
	failWith  error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]*models.Product{
		"p-1": {ID: "p-1", VendorID: "v-bob", Title: "Sunset", Price: decimal.RequireFromString("9.99"), Category: "nature", Status: models.ProductActive},
	}}
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]*models.Product, error) {
	f.lastCtx = ctx
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []*models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) ListByVendor(_ context.Context, vendorID string) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]string, error) {
	return []string{"nature"}, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, common.NewError(common.ErrorNotFound, "Product not found")
	}
	return p, nil
}

func (f *fakeCatalog) Create(_ context.Context, vendorID string, in services.ProductInput) (*models.Product, error) {
	p := &models.Product{ID: "p-new", VendorID: vendorID, Title: in.Title, Price: *in.Price, Status: models.ProductActive}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeCatalog) Update(_ context.Context, id string, actor *policy.Actor, patch models.ProductPatch) error {
	p, ok := f.products[id]
	if !ok {
		return common.NewError(common.ErrorNotFound, "Product not found")
	}
	if err := policy.Allow(actor, policy.ProductMutate, policy.Resource{VendorID: p.VendorID}); err != nil {
		return err
	}
	f.updatedBy, f.patch = actor, patch
	return nil
}

type fakeEntitlements struct {
	Entitlements
	favorites map[string]json.RawMessage
	cartQty   int
}

func (f *fakeEntitlements) AddFavorite(_ context.Context, userID, productID string, snapshot json.RawMessage) error {
	if productID == "" || len(snapshot) == 0 {
		return common.NewError(common.ErrorInvalidInput, "Image ID and data are required")
	}
	if f.favorites == nil {
		f.favorites = map[string]json.RawMessage{}
	}
	f.favorites[userID+"/"+productID] = snapshot
	return nil
}

func (f *fakeEntitlements) IsFavorite(_ context.Context, userID, productID string) (bool, error) {
	_, ok := f.favorites[userID+"/"+productID]
	return ok, nil
}

func (f *fakeEntitlements) AddToCart(_ context.Context, _, _ string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, common.NewError(common.ErrorInvalidInput, "Quantity must be at least 1")
	}
	f.cartQty += quantity
	return f.cartQty, nil
}

func (f *fakeEntitlements) Cart(context.Context, string) ([]*models.CartItem, error) {
	return nil, nil
}

type fakeOrders struct {
	Orders
}

func (f *fakeOrders) Purchase(_ context.Context, userID, productID string) (*models.Order, error) {
	if productID != "p-1" {
		return nil, common.NewError(common.ErrorNotFound, "Product not found")
	}
	return &models.Order{ID: "o-1", UserID: userID, ProductID: productID, VendorID: "v-bob",
		Price: decimal.RequireFromString("9.99"), Status: models.OrderStatusPaid}, nil
}

type fakeStats struct {
	Stats
}

func (f *fakeStats) Platform(context.Context) (*models.PlatformStats, error) {
	return &models.PlatformStats{TotalUsers: 2, TotalVendors: 1, TotalProducts: 1, TotalRevenue: decimal.Zero}, nil
}

type fakeImages struct {
	body        string
	contentType string
}

func (f *fakeImages) Upload(_ context.Context, body io.Reader, _ int64, contentType string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.body, f.contentType = string(b), contentType
	return "http://cdn.local/pixelsbee/products/x.png", nil
}

type fixture struct {
	accounts     *fakeAccounts
	catalog      *fakeCatalog
	entitlements *fakeEntitlements
	images       *fakeImages
	metrics      *metrics.Metrics
	api          *API
	handler      http.Handler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		accounts:     &fakeAccounts{},
		catalog:      newFakeCatalog(),
		entitlements: &fakeEntitlements{},
		images:       &fakeImages{},
		metrics:      metrics.New(),
	}
	f.api = NewAPI(logging.NewJSONLogger(io.Discard, "error"), f.metrics, opts,
		f.accounts, f.catalog, f.entitlements, &fakeOrders{}, &fakeStats{}, f.images)
	f.handler = f.api.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, actor *policy.Actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+"tok-"+actor.ID)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[messageResponse](t, rr).Message
}

var testTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

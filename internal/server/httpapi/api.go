// Package httpapi exposes the marketplace services as a JSON API under /api.
//
// Every handler resolves the caller (see authenticate), asks policy.Allow
// whether the action is permitted and only then calls into a service.
// Service errors are mapped to statuses by writeError.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sayedsafi2000/pixelsbee/internal/logging"
	"github.com/sayedsafi2000/pixelsbee/internal/server/metrics"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"
)

// Accounts is the identity surface used by the handlers.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Resolve(ctx context.Context, token string) (*policy.Actor, error)
	ApproveVendor(ctx context.Context, id string) error
	BlockVendor(ctx context.Context, id string) error
	BlockAccount(ctx context.Context, id string) error
	UnblockAccount(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	Profile(ctx context.Context, id string) (*models.AccountView, error)
	UpdateProfile(ctx context.Context, id, name, email string, pic *string) error
	ListVendors(ctx context.Context) ([]models.AccountView, error)
	ListUsers(ctx context.Context) ([]models.AccountView, error)
}

type Catalog interface {
	Create(ctx context.Context, vendorID string, in services.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, actor *policy.Actor, patch models.ProductPatch) error
	Remove(ctx context.Context, id string, actor *policy.Actor) error
	Get(ctx context.Context, id string) (*models.Product, error)
	ListAll(ctx context.Context) ([]*models.Product, error)
	ListEverything(ctx context.Context) ([]*models.Product, error)
	ListByVendor(ctx context.Context, vendorID string) ([]*models.Product, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type Entitlements interface {
	AddFavorite(ctx context.Context, userID, productID string, snapshot json.RawMessage) error
	RemoveFavorite(ctx context.Context, userID, productID string) error
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
	Favorites(ctx context.Context, userID string) ([]*models.Favorite, error)
	AddDownload(ctx context.Context, userID, productID string, snapshot json.RawMessage) error
	Downloads(ctx context.Context, userID string) ([]*models.Download, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (int, error)
	RemoveFromCart(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
	Cart(ctx context.Context, userID string) ([]*models.CartItem, error)
	Checkout(ctx context.Context, userID string) ([]*models.Order, error)
}

type Orders interface {
	Purchase(ctx context.Context, userID, productID string) (*models.Order, error)
	History(ctx context.Context, userID string) ([]*models.Order, error)
}

type Stats interface {
	Platform(ctx context.Context) (*models.PlatformStats, error)
	Vendor(ctx context.Context, vendorID string) (*models.VendorStats, error)
	User(ctx context.Context, userID string) (*models.UserStats, error)
	OrderAnalytics(ctx context.Context) (*models.OrderAnalytics, error)
}

type Images interface {
	Upload(ctx context.Context, body io.Reader, size int64, contentType string) (string, error)
}

// Options tunes the transport. Zero values disable the feature.
type Options struct {
	RequestTimeout time.Duration
	AuthRateLimit  int
	AuthRateBurst  int
	MaxUploadBytes int64
}

type API struct {
	accounts     Accounts
	catalog      Catalog
	entitlements Entitlements
	orders       Orders
	stats        Stats
	images       Images
	logger       logging.Logger
	metrics      *metrics.Metrics
	authLimiter  *RateLimiter
	opts         Options
}

func NewAPI(l logging.Logger, m *metrics.Metrics, opts Options,
	a Accounts, c Catalog, e Entitlements, o Orders, s Stats, i Images) *API {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	var limiter *RateLimiter
	if opts.AuthRateLimit > 0 {
		limiter = NewRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst)
	}
	return &API{
		accounts:     a,
		catalog:      c,
		entitlements: e,
		orders:       o,
		stats:        s,
		images:       i,
		logger:       l.With("module", "http_api"),
		metrics:      m,
		authLimiter:  limiter,
		opts:         opts,
	}
}

// StartCleanup evicts idle per-client rate limiter state in the background
// until ctx is done. It is a no-op when rate limiting is off.
func (a *API) StartCleanup(ctx context.Context) {
	if a.authLimiter == nil {
		return
	}
	a.authLimiter.StartCleanup(ctx, limiterCleanupInterval, limiterMaxIdle)
}

// Handler builds the router. Literal product paths are registered before
// /products/{id} because mux matches in registration order.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(a.logRequests)
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
		r.Use(a.instrument)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(a.withTimeout, a.authenticate)

	authR := api.PathPrefix("/auth").Subrouter()
	if a.authLimiter != nil {
		authR.Use(a.authLimiter.Handler)
	}
	authR.HandleFunc("/register", a.register).Methods(http.MethodPost)
	authR.HandleFunc("/login", a.login).Methods(http.MethodPost)

	p := api.PathPrefix("/products").Subrouter()
	p.HandleFunc("", a.listProducts).Methods(http.MethodGet)
	p.HandleFunc("", a.createProduct).Methods(http.MethodPost)
	p.HandleFunc("/search", a.searchProducts).Methods(http.MethodGet)
	p.HandleFunc("/categories", a.listCategories).Methods(http.MethodGet)
	p.HandleFunc("/my", a.myProducts).Methods(http.MethodGet)
	p.HandleFunc("/upload", a.uploadImage).Methods(http.MethodPost)
	p.HandleFunc("/{id}", a.getProduct).Methods(http.MethodGet)
	p.HandleFunc("/{id}", a.updateProduct).Methods(http.MethodPut)
	p.HandleFunc("/{id}", a.deleteProduct).Methods(http.MethodDelete)

	adm := api.PathPrefix("/admin").Subrouter()
	adm.HandleFunc("/stats", a.platformStats).Methods(http.MethodGet)
	adm.HandleFunc("/analytics", a.orderAnalytics).Methods(http.MethodGet)
	adm.HandleFunc("/vendors", a.listVendors).Methods(http.MethodGet)
	adm.HandleFunc("/vendors/{id}/approve", a.accountAction(a.accounts.ApproveVendor, "Vendor approved")).Methods(http.MethodPut)
	adm.HandleFunc("/vendors/{id}/block", a.accountAction(a.accounts.BlockVendor, "Vendor blocked")).Methods(http.MethodPut)
	adm.HandleFunc("/users", a.listUsers).Methods(http.MethodGet)
	adm.HandleFunc("/users/{id}/block", a.accountAction(a.accounts.BlockAccount, "User blocked")).Methods(http.MethodPut)
	adm.HandleFunc("/users/{id}/unblock", a.accountAction(a.accounts.UnblockAccount, "User unblocked")).Methods(http.MethodPut)
	adm.HandleFunc("/products", a.allProducts).Methods(http.MethodGet)

	u := api.PathPrefix("/user").Subrouter()
	u.HandleFunc("/profile", a.getProfile).Methods(http.MethodGet)
	u.HandleFunc("/profile", a.updateProfile).Methods(http.MethodPut)
	u.HandleFunc("/password", a.changePassword).Methods(http.MethodPut)
	u.HandleFunc("/stats", a.userStats).Methods(http.MethodGet)
	u.HandleFunc("/favorites", a.listFavorites).Methods(http.MethodGet)
	u.HandleFunc("/favorites", a.addFavorite).Methods(http.MethodPost)
	u.HandleFunc("/favorites/{productId}", a.removeFavorite).Methods(http.MethodDelete)
	u.HandleFunc("/favorites/{productId}/check", a.checkFavorite).Methods(http.MethodGet)
	u.HandleFunc("/downloads", a.listDownloads).Methods(http.MethodGet)
	u.HandleFunc("/downloads", a.addDownload).Methods(http.MethodPost)
	u.HandleFunc("/cart", a.getCart).Methods(http.MethodGet)
	u.HandleFunc("/cart", a.addToCart).Methods(http.MethodPost)
	u.HandleFunc("/cart", a.clearCart).Methods(http.MethodDelete)
	u.HandleFunc("/cart/checkout", a.checkout).Methods(http.MethodPost)
	u.HandleFunc("/cart/{productId}", a.removeFromCart).Methods(http.MethodDelete)
	u.HandleFunc("/orders", a.listOrders).Methods(http.MethodGet)
	u.HandleFunc("/orders", a.createOrder).Methods(http.MethodPost)

	v := api.PathPrefix("/vendor").Subrouter()
	v.HandleFunc("/profile", a.getProfile).Methods(http.MethodGet)
	v.HandleFunc("/profile", a.updateProfile).Methods(http.MethodPut)
	v.HandleFunc("/password", a.changePassword).Methods(http.MethodPut)
	v.HandleFunc("/stats", a.vendorStats).Methods(http.MethodGet)
	v.HandleFunc("/products", a.myProducts).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	return r
}

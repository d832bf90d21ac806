package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
)

// snapshotRequest is the body of favorite and download writes: the
// product id plus the client's copy of the product as it was shown.
type snapshotRequest struct {
	ImageID   string          `json:"imageId"`
	ImageData json.RawMessage `json:"imageData"`
}

type favoriteCheckResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

type cartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type cartResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

type checkoutResponse struct {
	Message string          `json:"message"`
	Orders  []*models.Order `json:"orders"`
}

type orderRequest struct {
	ProductID string `json:"product_id"`
}

func (a *API) customer(w http.ResponseWriter, r *http.Request) (*policy.Actor, bool) {
	return a.allow(w, r, policy.EntitlementManage, policy.Resource{})
}

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	list, err := a.entitlements.Favorites(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) addFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.entitlements.AddFavorite(r.Context(), actor.ID, req.ImageID, req.ImageData); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Added to favorites")
}

func (a *API) removeFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	if err := a.entitlements.RemoveFavorite(r.Context(), actor.ID, mux.Vars(r)["productId"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from favorites")
}

func (a *API) checkFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	fav, err := a.entitlements.IsFavorite(r.Context(), actor.ID, mux.Vars(r)["productId"])
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteCheckResponse{IsFavorite: fav})
}

func (a *API) listDownloads(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	list, err := a.entitlements.Downloads(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) addDownload(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.entitlements.AddDownload(r.Context(), actor.ID, req.ImageID, req.ImageData); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Added to downloads")
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	items, err := a.entitlements.Cart(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (a *API) addToCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	total, err := a.entitlements.AddToCart(r.Context(), actor.ID, req.ProductID, qty)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Added to cart", Quantity: total})
}

func (a *API) removeFromCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	if err := a.entitlements.RemoveFromCart(r.Context(), actor.ID, mux.Vars(r)["productId"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from cart")
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.customer(w, r)
	if !ok {
		return
	}
	if err := a.entitlements.ClearCart(r.Context(), actor.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared")
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.OrderRecord, policy.Resource{})
	if !ok {
		return
	}
	orders, err := a.entitlements.Checkout(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{Message: "Order placed", Orders: nonNil(orders)})
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.OrderRecord, policy.Resource{})
	if !ok {
		return
	}
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	order, err := a.orders.Purchase(r.Context(), actor.ID, req.ProductID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.OrderRecord, policy.Resource{})
	if !ok {
		return
	}
	list, err := a.orders.History(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

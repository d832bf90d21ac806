package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
)

func (a *API) platformStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.PlatformStats, policy.Resource{}); !ok {
		return
	}
	stats, err := a.stats.Platform(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) orderAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.PlatformStats, policy.Resource{}); !ok {
		return
	}
	analytics, err := a.stats.OrderAnalytics(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (a *API) listVendors(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.AccountAdminister, policy.Resource{}); !ok {
		return
	}
	list, err := a.accounts.ListVendors(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.AccountAdminister, policy.Resource{}); !ok {
		return
	}
	list, err := a.accounts.ListUsers(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// accountAction adapts a status transition on the {id} account.
func (a *API) accountAction(fn func(ctx context.Context, id string) error, done string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.allow(w, r, policy.AccountAdminister, policy.Resource{}); !ok {
			return
		}
		if err := fn(r.Context(), mux.Vars(r)["id"]); err != nil {
			a.writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, done)
	}
}

func (a *API) allProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.CatalogAdminister, policy.Resource{}); !ok {
		return
	}
	list, err := a.catalog.ListEverything(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	OriginalURL string           `json:"original_url"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.CatalogRead, policy.Resource{}); !ok {
		return
	}
	list, err := a.catalog.ListAll(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) searchProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.CatalogRead, policy.Resource{}); !ok {
		return
	}
	list, err := a.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.CatalogRead, policy.Resource{}); !ok {
		return
	}
	list, err := a.catalog.ListCategories(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.CatalogRead, policy.Resource{}); !ok {
		return
	}
	p, err := a.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) myProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.ProductListOwn, policy.Resource{})
	if !ok {
		return
	}
	list, err := a.catalog.ListByVendor(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (a *API) uploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.ImageUpload, policy.Resource{}); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := a.images.Upload(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: url})
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.ProductCreate, policy.Resource{})
	if !ok {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	p, err := a.catalog.Create(r.Context(), actor.ID, services.ProductInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    req.ImageURL,
		OriginalURL: req.OriginalURL,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// mutator checks the capability to mutate products at all. Ownership of
// the concrete product is checked by the catalog against the stored row.
func (a *API) mutator(w http.ResponseWriter, r *http.Request) (*policy.Actor, bool) {
	actor := actorFrom(r.Context())
	res := policy.Resource{}
	if actor != nil {
		res.VendorID = actor.ID
	}
	return a.allow(w, r, policy.ProductMutate, res)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.mutator(w, r)
	if !ok {
		return
	}

	var patch models.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.catalog.Update(r.Context(), mux.Vars(r)["id"], actor, patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product updated")
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.mutator(w, r)
	if !ok {
		return
	}
	if err := a.catalog.Remove(r.Context(), mux.Vars(r)["id"], actor); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}

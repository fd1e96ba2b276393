package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

type Catalog interface {
	Products(ctx context.Context, category string) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Search(ctx context.Context, key string) ([]domain.Product, error)
	HomeProducts(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Banners(ctx context.Context) ([]domain.Banner, error)
}

type ProductHandler struct {
	catalog  Catalog
	notifier notify.Notifier
	timeout  time.Duration
}

func NewProductHandler(catalog Catalog, notifier notify.Notifier, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		notifier: notifier,
		timeout:  timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

func productsResponse(products []domain.Product) ProductsResponse {
	if products == nil {
		products = []domain.Product{}
	}
	return ProductsResponse{Products: products}
}

// GET /api/v1/products?category=&sort=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, err := backend.ParseSortKey(r.URL.Query().Get("sort"))
	if errors.Is(err, backend.ErrUnknownSort) {
		respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be one of latest, price-low-high, price-high-low, discount")
		return
	}

	products, err := h.catalog.Products(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "products", productsResponse(nil))
		return
	}
	respondJSON(w, http.StatusOK, productsResponse(backend.SortProducts(products, key)))
}

// GET /api/v1/products/home
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.HomeProducts(ctx)
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "products", productsResponse(nil))
		return
	}
	respondJSON(w, http.StatusOK, productsResponse(products))
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.Product(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleBackendError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/search/{key}
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.Search(ctx, chi.URLParam(r, "key"))
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "search results", productsResponse(nil))
		return
	}
	respondJSON(w, http.StatusOK, productsResponse(products))
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "categories", []domain.Category{})
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// GET /api/v1/banners
func (h *ProductHandler) Banners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	banners, err := h.catalog.Banners(ctx)
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "banners", []domain.Banner{})
		return
	}
	if banners == nil {
		banners = []domain.Banner{}
	}
	respondJSON(w, http.StatusOK, banners)
}

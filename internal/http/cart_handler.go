package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/pricing"
)

type CartStore interface {
	Cart() domain.Cart
	AddToCart(ctx context.Context, p domain.Product) domain.Cart
	RemoveFromCart(ctx context.Context, id string) domain.Cart
	IncreaseQuantity(ctx context.Context, id string) domain.Cart
	DecreaseQuantity(ctx context.Context, id string) domain.Cart
}

type ProductLookup interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}

type CartHandler struct {
	store    CartStore
	products ProductLookup
	policy   pricing.Policy
	notifier notify.Notifier
	timeout  time.Duration
	maxBody  int64
}

func NewCartHandler(store CartStore, products ProductLookup, policy pricing.Policy, notifier notify.Notifier, timeout time.Duration) *CartHandler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &CartHandler{
		store:    store,
		products: products,
		policy:   policy,
		notifier: notifier,
		timeout:  timeout,
		maxBody:  1 << 20,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type CartResponse struct {
	Items  []domain.CartLineItem `json:"items"`
	Count  int                   `json:"count"`
	Totals pricing.Totals        `json:"totals"`
}

func (h *CartHandler) view(c domain.Cart, region string) CartResponse {
	if region == "" {
		region = domain.DefaultDistrict
	}
	items := c.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return CartResponse{
		Items:  items,
		Count:  c.Len(),
		Totals: h.policy.Compute(c, region),
	}
}

// GET /api/v1/cart?region=
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view(h.store.Cart(), r.URL.Query().Get("region")))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		handleBackendError(ctx, w, err)
		return
	}
	if !product.InStock {
		respondError(w, http.StatusConflict, "out_of_stock", "product is out of stock")
		return
	}

	cart := h.store.AddToCart(ctx, product)
	h.notifier.Notify(notify.LevelSuccess, product.Name+" added to cart!")
	respondJSON(w, http.StatusCreated, h.view(cart, r.URL.Query().Get("region")))
}

// POST /api/v1/cart/items/{id}/increase
func (h *CartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	cart := h.store.IncreaseQuantity(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.view(cart, r.URL.Query().Get("region")))
}

// POST /api/v1/cart/items/{id}/decrease
func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	cart := h.store.DecreaseQuantity(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.view(cart, r.URL.Query().Get("region")))
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart := h.store.RemoveFromCart(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.view(cart, r.URL.Query().Get("region")))
}

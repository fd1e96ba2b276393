package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

type OrderReader interface {
	TrackOrder(ctx context.Context, id string) (domain.Order, error)
	MyOrders(ctx context.Context, email string) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders   OrderReader
	notifier notify.Notifier
	timeout  time.Duration
}

func NewOrdersHandler(orders OrderReader, notifier notify.Notifier, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:   orders,
		notifier: notifier,
		timeout:  timeout,
	}
}

// GET /api/v1/orders/track/{id}
func (h *OrdersHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.TrackOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleBackendError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/mine, behind RequireUser.
func (h *OrdersHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.MyOrders(ctx, userFromContext(r.Context()).Email)
	if err != nil {
		handleReadError(ctx, w, h.notifier, err, "your orders", []domain.Order{})
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

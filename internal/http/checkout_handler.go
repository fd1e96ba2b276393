package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrirakib04/sks-web/internal/checkout"
	"github.com/mrirakib04/sks-web/internal/domain"
)

type Checkout interface {
	Submit(ctx context.Context, method domain.PaymentMethod, customer domain.Customer) (checkout.Result, error)
	Confirm(ctx context.Context, outcome checkout.Outcome, orderID string) (checkout.OutcomeView, error)
}

type CheckoutHandler struct {
	checkout Checkout
	users    UserSource
	timeout  time.Duration
	maxBody  int64
}

func NewCheckoutHandler(c Checkout, users UserSource, timeout time.Duration, maxBody int64) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: c,
		users:    users,
		timeout:  timeout,
		maxBody:  maxBody,
	}
}

// POST /api/v1/checkout/{method}
//
// Fields the body leaves out keep the form defaults, and the email defaults
// to the logged-in user's.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	method, err := domain.ParsePaymentMethod(chi.URLParam(r, "method"))
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_method", err.Error())
		return
	}

	var email string
	if u, err := h.users.User(); err == nil {
		email = u.Email
	}
	customer := domain.NewCustomerForm(email)
	if !decodeJSON(w, r, h.maxBody, &customer) {
		return
	}

	res, err := h.checkout.Submit(ctx, method, customer)
	if err != nil {
		handleCheckoutError(ctx, w, res, err)
		return
	}

	status := http.StatusCreated
	if method == domain.PaymentSSL {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

func handleCheckoutError(ctx context.Context, w http.ResponseWriter, res checkout.Result, err error) {
	var validation *checkout.ValidationError

	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Code:    "missing_fields",
			Details: validation.Missing,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrLoginRequired):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   err.Error(),
			Code:    "login_required",
			Details: map[string]string{"next": res.Next},
		})
	case errors.Is(err, checkout.ErrUnknownMethod):
		respondError(w, http.StatusBadRequest, "unknown_method", err.Error())
	case errors.Is(err, checkout.ErrPlaceOrder):
		respondError(w, http.StatusBadGateway, "order_failed", err.Error())
	default:
		handleBackendError(ctx, w, err)
	}
}

func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, checkout.OutcomeSuccess)
}

func (h *CheckoutHandler) Fail(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, checkout.OutcomeFail)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, checkout.OutcomeCancel)
}

// GET /order-{success,fail,cancel}?orderId=
func (h *CheckoutHandler) confirm(w http.ResponseWriter, r *http.Request, outcome checkout.Outcome) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.checkout.Confirm(ctx, outcome, r.URL.Query().Get("orderId"))
	if err != nil {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   err.Error(),
			Code:    "order_unavailable",
			Details: view,
		})
		return
	}
	respondJSON(w, http.StatusOK, view)
}

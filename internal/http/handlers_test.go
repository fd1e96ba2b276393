package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrirakib04/sks-web/internal/admin"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/checkout"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetCart_Empty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CartResponse](t, rec)
	assert.Empty(t, resp.Items)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 0.0, resp.Totals.Subtotal)
	assert.Equal(t, 70.0, resp.Totals.DeliveryFee)
}

func TestAddItem_ThenTotals(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	f.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`)
	f.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p2"}`)

	rec = f.do(t, http.MethodGet, "/api/v1/cart?region=Dhaka", "")
	resp := decode[CartResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 450.0, resp.Totals.Subtotal)
	assert.Equal(t, 520.0, resp.Totals.NetTotal)

	rec = f.do(t, http.MethodGet, "/api/v1/cart?region=Khulna", "")
	resp = decode[CartResponse](t, rec)
	assert.Equal(t, 570.0, resp.Totals.NetTotal)

	var messages []string
	for _, n := range f.feed.Drain() {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "Frying Pan added to cart!")
}

func TestAddItem_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
		code int
		err  string
	}{
		{"invalid json", "nope", http.StatusBadRequest, "invalid_request"},
		{"missing id", `{}`, http.StatusBadRequest, "invalid_product_id"},
		{"unknown product", `{"product_id":"zzz"}`, http.StatusNotFound, "not_found"},
		{"out of stock", `{"product_id":"p3"}`, http.StatusConflict, "out_of_stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.err, decode[ErrorResponse](t, rec).Code)
		})
	}
	assert.True(t, f.store.Cart().IsEmpty())
}

func TestAddItem_BackendUnavailable(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = backend.ErrUnavailable

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCartQuantityAndRemove(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items/p1/increase", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[CartResponse](t, rec).Items[0].Quantity)

	f.do(t, http.MethodPost, "/api/v1/cart/items/p1/decrease", "")
	rec = f.do(t, http.MethodPost, "/api/v1/cart/items/p1/decrease", "")
	assert.Equal(t, 1, decode[CartResponse](t, rec).Items[0].Quantity)

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/items/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Items)
}

func TestListProducts_Sorted(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products?sort=price-high-low", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ProductsResponse](t, rec)
	require.Len(t, resp.Products, 3)
	assert.Equal(t, "p2", resp.Products[0].ID)
	assert.Equal(t, "p3", resp.Products[2].ID)
}

func TestListProducts_UnknownSort(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products?sort=random", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/p2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kettle", decode[domain.Product](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/api/v1/products/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchAndSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/search/kettle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ProductsResponse](t, rec).Products, 1)

	rec = f.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Len(t, decode[[]domain.Category](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/banners", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCheckout_DefaultsFormAndSessionEmail(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleNone)
	f.checkout.result = checkout.Result{Next: "/order-success?orderId=o1", OrderID: "o1"}

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/cod", `{"name":"Rahim","phone":"017","address":"Road 1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[checkout.Result](t, rec)
	assert.Equal(t, domain.PaymentCOD, res.Method)
	require.Len(t, f.checkout.customers, 1)
	c := f.checkout.customers[0]
	assert.Equal(t, "staff@example.com", c.Email)
	assert.Equal(t, "Dhaka", c.District)
	assert.Equal(t, 1100, c.Postcode)
	assert.Equal(t, "Bangladesh", c.Country)
}

func TestCheckout_SSLRedirect(t *testing.T) {
	f := newFixture(t)
	f.checkout.result = checkout.Result{Next: "https://gw.example/pay", RedirectURL: "https://gw.example/pay"}

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/ssl", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://gw.example/pay", decode[checkout.Result](t, rec).RedirectURL)
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		next string
		code int
		want string
	}{
		{"unknown method", "/api/v1/checkout/bkash", nil, "", http.StatusNotFound, "unknown_method"},
		{"empty cart", "/api/v1/checkout/cod", checkout.ErrEmptyCart, "", http.StatusBadRequest, "empty_cart"},
		{"missing fields", "/api/v1/checkout/cod", &checkout.ValidationError{Missing: []string{"name"}}, "", http.StatusUnprocessableEntity, "missing_fields"},
		{"login required", "/api/v1/checkout/ssl", checkout.ErrLoginRequired, "/login", http.StatusUnauthorized, "login_required"},
		{"backend refused", "/api/v1/checkout/cod", errors.Join(checkout.ErrPlaceOrder, errors.New("500")), "", http.StatusBadGateway, "order_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.checkout.err = tt.err
			f.checkout.result = checkout.Result{Next: tt.next}

			rec := f.do(t, http.MethodPost, tt.path, `{}`)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.want, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestCheckout_MissingFieldsDetails(t *testing.T) {
	f := newFixture(t)
	f.checkout.err = &checkout.ValidationError{Missing: []string{"name", "phone"}}

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/cod", `{}`)

	assert.JSONEq(t, `{"error":"missing required fields: name, phone","code":"missing_fields","details":["name","phone"]}`, rec.Body.String())
}

func TestOutcomeViews(t *testing.T) {
	f := newFixture(t)

	for path, want := range map[string]string{
		"/order-success?orderId=o1": "success",
		"/order-fail?orderId=o1":    "fail",
		"/order-cancel":             "cancel",
	} {
		rec := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, decode[checkout.OutcomeView](t, rec).Outcome)
	}
}

func TestOutcomeView_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.checkout.err = checkout.ErrOrderUnavailable

	rec := f.do(t, http.MethodGet, "/order-success?orderId=o1", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "order_unavailable", decode[ErrorResponse](t, rec).Code)
}

func TestCatalogReads_OutageServesEmptyWithNotice(t *testing.T) {
	outages := []error{
		backend.ErrUnavailable,
		&backend.StatusError{Method: http.MethodGet, Path: "/products", Code: http.StatusBadGateway},
		context.DeadlineExceeded,
	}
	targets := []struct {
		path string
		body string
	}{
		{"/api/v1/products", `{"products":[]}`},
		{"/api/v1/products/home", `{"products":[]}`},
		{"/api/v1/search/pan", `{"products":[]}`},
		{"/api/v1/categories", `[]`},
		{"/api/v1/banners", `[]`},
	}
	for _, outage := range outages {
		for _, tt := range targets {
			t.Run(tt.path+"/"+outage.Error(), func(t *testing.T) {
				f := newFixture(t)
				f.catalog.err = outage

				rec := f.do(t, http.MethodGet, tt.path, "")

				require.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, tt.body, rec.Body.String())
				notices := f.feed.Drain()
				require.Len(t, notices, 1)
				assert.Equal(t, notify.LevelError, notices[0].Level)
			})
		}
	}
}

func TestCatalogReads_ClientErrorKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = &backend.StatusError{Code: http.StatusForbidden}

	rec := f.do(t, http.MethodGet, "/api/v1/products", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.feed.Drain())
}

func TestGetProduct_OutageIsNotSoftened(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = backend.ErrUnavailable

	rec := f.do(t, http.MethodGet, "/api/v1/products/p1", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOrders_MineOutage(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleNone)
	f.catalog.err = backend.ErrUnavailable

	rec := f.do(t, http.MethodGet, "/api/v1/orders/mine", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Len(t, f.feed.Drain(), 1)
}

func TestOrders_TrackWithoutMethod(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/orders/track/legacy", "")

	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[domain.Order](t, rec)
	assert.Equal(t, "legacy", order.ID)
	assert.Equal(t, domain.PaymentMethod(0), order.Method)
}

func TestOrders_TrackAndMine(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/orders/track/o1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderStatusShipping, decode[domain.Order](t, rec).OrderStatus)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/track/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/mine", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.login(domain.RoleNone)
	rec = f.do(t, http.MethodGet, "/api/v1/orders/mine", "")
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]domain.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, "staff@example.com", orders[0].Customer.Email)
}

func TestSession_LoginMeLogout(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/session", `{"email":"a@example.com","name":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@example.com", decode[domain.User](t, rec).Email)

	rec = f.do(t, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/session", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotices_Drain(t *testing.T) {
	f := newFixture(t)
	f.feed.Notify(notify.LevelInfo, "hello")

	rec := f.do(t, http.MethodGet, "/api/v1/notices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	notices := decode[[]notify.Notice](t, rec)
	require.Len(t, notices, 1)
	assert.Equal(t, "hello", notices[0].Message)

	rec = f.do(t, http.MethodGet, "/api/v1/notices", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdmin_RequiresStaff(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.login(domain.RoleNone)
	rec = f.do(t, http.MethodGet, "/api/v1/admin/orders", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.login(domain.RoleModerator)
	rec = f.do(t, http.MethodGet, "/api/v1/admin/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_OrdersFilter(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleAdmin)
	f.console.orders = []domain.Order{{ID: "o1", Method: domain.PaymentCOD}}

	rec := f.do(t, http.MethodGet, "/api/v1/admin/orders?method=cod&status=pending&sort=latest", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, admin.OrderFilter{Method: domain.PaymentCOD, Status: "pending", Latest: true}, f.console.filter)

	rec = f.do(t, http.MethodGet, "/api/v1/admin/orders?method=bkash", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleAdmin)

	rec := f.do(t, http.MethodPatch, "/api/v1/admin/orders/o1/status", `{"status":"shipping"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"o1=shipping"}, f.console.changed)

	f.console.err = admin.ErrIllegalTransition
	rec = f.do(t, http.MethodPatch, "/api/v1/admin/orders/o1/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.console.err = admin.ErrOrderNotFound
	rec = f.do(t, http.MethodPost, "/api/v1/admin/orders/o9/paid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_CreateProductMultipart(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleAdmin)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Pan"))
	require.NoError(t, mw.WriteField("price", "1000"))
	require.NoError(t, mw.WriteField("discount", "10"))
	require.NoError(t, mw.WriteField("category", "Cookware"))
	part, err := mw.CreateFormFile("image1", "pan.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("pixels"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "new-id", decode[CreatedResponse](t, rec).ID)
	assert.Equal(t, "staff@example.com", f.console.actor)
	assert.Equal(t, 1000.0, f.console.form.Price)
	assert.Equal(t, 10, f.console.form.Discount)
	assert.True(t, f.console.form.InStock)
	assert.Equal(t, []string{"pan.jpg"}, f.console.images)
}

func TestAdmin_CreateProductBadPrice(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleAdmin)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("price", "cheap"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_price", decode[ErrorResponse](t, rec).Code)
}

func TestAdmin_CreateCategory(t *testing.T) {
	f := newFixture(t)
	f.login(domain.RoleAdmin)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/categories", `{"index":3,"name":"Kitchen"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"Kitchen"}, f.console.changed)

	f.console.err = admin.ErrCategoryName
	rec = f.do(t, http.MethodPost, "/api/v1/admin/categories", `{"index":3,"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBackendError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&backend.StatusError{Code: 401}, http.StatusUnauthorized},
		{&backend.StatusError{Code: 403}, http.StatusForbidden},
		{&backend.StatusError{Code: 500}, http.StatusBadGateway},
		{backend.ErrNotApplied, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handleBackendError(t.Context(), rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Session  *SessionHandler
	Admin    *AdminHandler
	Users    UserSource
}

// NewRouter mounts every route. The returned handler is wrapped for
// OpenTelemetry.
func NewRouter(h Handlers, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/order-success", h.Checkout.Success)
	r.Get("/order-fail", h.Checkout.Fail)
	r.Get("/order-cancel", h.Checkout.Cancel)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Post("/items/{id}/increase", h.Cart.Increase)
			r.Post("/items/{id}/decrease", h.Cart.Decrease)
			r.Delete("/items/{id}", h.Cart.RemoveItem)
		})

		r.Get("/products", h.Products.List)
		r.Get("/products/home", h.Products.Home)
		r.Get("/products/{id}", h.Products.Get)
		r.Get("/search/{key}", h.Products.Search)
		r.Get("/categories", h.Products.Categories)
		r.Get("/banners", h.Products.Banners)

		r.Post("/checkout/{method}", h.Checkout.Submit)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/track/{id}", h.Orders.Track)
			r.With(RequireUser(h.Users)).Get("/mine", h.Orders.Mine)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session.Me)
			r.Post("/", h.Session.Login)
			r.Delete("/", h.Session.Logout)
		})
		r.Get("/notices", h.Session.Notices)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff(h.Users))

			r.Get("/orders", h.Admin.Orders)
			r.Patch("/orders/{id}/status", h.Admin.UpdateStatus)
			r.Post("/orders/{id}/paid", h.Admin.MarkPaid)
			r.Delete("/orders/{id}", h.Admin.DeleteOrder)
			r.Get("/stats", h.Admin.Stats)
			r.Get("/customers", h.Admin.Customers)

			r.Get("/products", h.Admin.Products)
			r.Get("/products/{id}", h.Admin.Product)
			r.Post("/products", h.Admin.CreateProduct)
			r.Put("/products/{id}", h.Admin.UpdateProduct)
			r.Delete("/products/{id}", h.Admin.DeleteProduct)

			r.Get("/categories", h.Admin.Categories)
			r.Post("/categories", h.Admin.CreateCategory)
			r.Put("/categories/{id}", h.Admin.UpdateCategory)
			r.Get("/banners", h.Admin.Banners)
			r.Post("/banners", h.Admin.CreateBanner)
			r.Put("/banners/{id}", h.Admin.UpdateBanner)
			r.Delete("/settings/{id}", h.Admin.DeleteSetting)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

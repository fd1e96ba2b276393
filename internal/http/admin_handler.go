package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrirakib04/sks-web/internal/admin"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/upload"
)

type Console interface {
	Orders(ctx context.Context, f admin.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) error
	MarkPaid(ctx context.Context, id string) error
	DeleteOrder(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]domain.OrderDayStat, error)
	Customers(ctx context.Context) ([]domain.User, error)

	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, actor string, f admin.ProductForm) (string, error)
	UpdateProduct(ctx context.Context, actor, id string, f admin.ProductForm) error
	DeleteProduct(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]domain.Category, error)
	Banners(ctx context.Context) ([]domain.Banner, error)
	CreateCategory(ctx context.Context, actor string, index int, name string) (string, error)
	UpdateCategory(ctx context.Context, actor, id string, index int, name string) error
	CreateBanner(ctx context.Context, actor string, index int, img admin.Image) (string, error)
	UpdateBanner(ctx context.Context, actor, id string, index int, current string, img *admin.Image) error
	DeleteSetting(ctx context.Context, id string) error
}

type AdminHandler struct {
	console Console
	timeout time.Duration
	maxBody int64
}

func NewAdminHandler(console Console, timeout time.Duration, maxBody int64) *AdminHandler {
	return &AdminHandler{
		console: console,
		timeout: timeout,
		maxBody: maxBody,
	}
}

type StatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

type CategoryRequestDTO struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

func handleAdminError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, admin.ErrIllegalTransition),
		errors.Is(err, admin.ErrNotPayable),
		errors.Is(err, admin.ErrNotDeletable):
		respondError(w, http.StatusConflict, "not_allowed", err.Error())
	case errors.Is(err, admin.ErrImageRequired),
		errors.Is(err, admin.ErrInvalidProduct),
		errors.Is(err, admin.ErrCategoryName),
		errors.Is(err, upload.ErrEmptyFile):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, admin.ErrNoImages):
		respondError(w, http.StatusUnprocessableEntity, "no_images", err.Error())
	case errors.Is(err, upload.ErrDisabled):
		respondError(w, http.StatusServiceUnavailable, "upload_disabled", err.Error())
	default:
		handleBackendError(ctx, w, err)
	}
}

// GET /api/v1/admin/orders?method=&status=&sort=latest
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := admin.OrderFilter{
		Status: q.Get("status"),
		Latest: q.Get("sort") == "latest",
	}
	if m := q.Get("method"); m != "" && m != "all" {
		method, err := domain.ParsePaymentMethod(m)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_method", err.Error())
			return
		}
		filter.Method = method
	}

	orders, err := h.console.Orders(ctx, filter)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// PATCH /api/v1/admin/orders/{id}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StatusRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if err := h.console.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status); err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/admin/orders/{id}/paid
func (h *AdminHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, func(ctx context.Context) error {
		return h.console.MarkPaid(ctx, chi.URLParam(r, "id"))
	})
}

// DELETE /api/v1/admin/orders/{id}
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, func(ctx context.Context) error {
		return h.console.DeleteOrder(ctx, chi.URLParam(r, "id"))
	})
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.console.Stats(ctx)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GET /api/v1/admin/customers
func (h *AdminHandler) Customers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.console.Customers(ctx)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GET /api/v1/admin/products
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.console.Products(ctx)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, productsResponse(products))
}

// GET /api/v1/admin/products/{id}
func (h *AdminHandler) Product(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.console.Product(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// POST /api/v1/admin/products, multipart: name, description, price,
// discount, category, inStock, image1..image3.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	form, closeFiles, ok := h.productForm(w, r)
	if !ok {
		return
	}
	defer closeFiles()

	id, err := h.console.CreateProduct(ctx, userFromContext(r.Context()).Email, form)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// PUT /api/v1/admin/products/{id}, same form as CreateProduct.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	form, closeFiles, ok := h.productForm(w, r)
	if !ok {
		return
	}
	defer closeFiles()

	if err := h.console.UpdateProduct(ctx, userFromContext(r.Context()).Email, chi.URLParam(r, "id"), form); err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, func(ctx context.Context) error {
		return h.console.DeleteProduct(ctx, chi.URLParam(r, "id"))
	})
}

// GET /api/v1/admin/categories
func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.console.Categories(ctx)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CategoryRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	id, err := h.console.CreateCategory(ctx, userFromContext(r.Context()).Email, req.Index, req.Name)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// PUT /api/v1/admin/categories/{id}
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CategoryRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if err := h.console.UpdateCategory(ctx, userFromContext(r.Context()).Email, chi.URLParam(r, "id"), req.Index, req.Name); err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/banners
func (h *AdminHandler) Banners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	banners, err := h.console.Banners(ctx)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, banners)
}

// POST /api/v1/admin/banners, multipart: index, image.
func (h *AdminHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.parseMultipart(w, r) {
		return
	}
	img, closeFile, err := formImage(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if img == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image is required")
		return
	}
	defer closeFile()

	id, err := h.console.CreateBanner(ctx, userFromContext(r.Context()).Email, formInt(r, "index"), *img)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// PUT /api/v1/admin/banners/{id}, multipart: index, current, optional image.
func (h *AdminHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.parseMultipart(w, r) {
		return
	}
	img, closeFile, err := formImage(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer closeFile()

	err = h.console.UpdateBanner(ctx, userFromContext(r.Context()).Email, chi.URLParam(r, "id"),
		formInt(r, "index"), r.FormValue("current"), img)
	if err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/admin/settings/{id}
func (h *AdminHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, func(ctx context.Context) error {
		return h.console.DeleteSetting(ctx, chi.URLParam(r, "id"))
	})
}

func (h *AdminHandler) noContent(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		handleAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(h.maxBody); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return false
	}
	return true
}

func (h *AdminHandler) productForm(w http.ResponseWriter, r *http.Request) (admin.ProductForm, func(), bool) {
	noop := func() {}
	if !h.parseMultipart(w, r) {
		return admin.ProductForm{}, noop, false
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be a number")
		return admin.ProductForm{}, noop, false
	}
	discount := 0
	if v := r.FormValue("discount"); v != "" {
		if discount, err = strconv.Atoi(v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_discount", "discount must be a whole number")
			return admin.ProductForm{}, noop, false
		}
	}

	form := admin.ProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Discount:    discount,
		Category:    r.FormValue("category"),
		InStock:     r.FormValue("inStock") != "false",
	}

	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	for i, field := range []string{"image1", "image2", "image3"} {
		img, closeFile, err := formImage(r, field)
		if err != nil {
			closeAll()
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return admin.ProductForm{}, noop, false
		}
		closers = append(closers, closeFile)
		form.Images[i] = img
	}
	return form, closeAll, true
}

// formImage returns nil when the field has no file.
func formImage(r *http.Request, field string) (*admin.Image, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &admin.Image{
		Name:        header.Filename,
		ContentType: contentType(header),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func contentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
	return n
}

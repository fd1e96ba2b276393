package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrirakib04/sks-web/internal/admin"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/cart"
	"github.com/mrirakib04/sks-web/internal/checkout"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/pricing"
	"github.com/mrirakib04/sks-web/internal/session"
	"github.com/mrirakib04/sks-web/internal/slot"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[string]domain.Product
	err      error
}

func (f *fakeCatalog) Products(_ context.Context, category string) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Product(_ context.Context, id string) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, backend.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Search(ctx context.Context, key string) ([]domain.Product, error) {
	all, err := f.Products(ctx, "")
	var out []domain.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(key)) {
			out = append(out, p)
		}
	}
	return out, err
}

func (f *fakeCatalog) HomeProducts(ctx context.Context) ([]domain.Product, error) {
	return f.Products(ctx, "")
}

func (f *fakeCatalog) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Index: 1, Name: "Cookware"}}, f.err
}

func (f *fakeCatalog) Banners(context.Context) ([]domain.Banner, error) {
	return nil, f.err
}

func (f *fakeCatalog) TrackOrder(_ context.Context, id string) (domain.Order, error) {
	if id == "legacy" {
		return domain.Order{ID: "legacy", OrderStatus: domain.OrderStatusPending}, nil
	}
	if id != "o1" {
		return domain.Order{}, backend.ErrNotFound
	}
	return domain.Order{ID: "o1", Method: domain.PaymentCOD, OrderStatus: domain.OrderStatusShipping}, nil
}

func (f *fakeCatalog) MyOrders(_ context.Context, email string) ([]domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Order{{ID: "o1", Method: domain.PaymentSSL, Customer: domain.Customer{Email: email}}}, nil
}

type fakeCheckout struct {
	mu        sync.Mutex
	customers []domain.Customer
	result    checkout.Result
	err       error
	view      checkout.OutcomeView
	outcomes  []checkout.Outcome
}

func (f *fakeCheckout) Submit(_ context.Context, method domain.PaymentMethod, c domain.Customer) (checkout.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers = append(f.customers, c)
	res := f.result
	res.Method = method
	return res, f.err
}

func (f *fakeCheckout) Confirm(_ context.Context, outcome checkout.Outcome, _ string) (checkout.OutcomeView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
	view := f.view
	view.Outcome = outcome.String()
	return view, f.err
}

type fakeSessions struct {
	mu       sync.Mutex
	user     *domain.User
	loginErr error
}

func (f *fakeSessions) User() (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return domain.User{}, session.ErrNotLoggedIn
	}
	return *f.user, nil
}

func (f *fakeSessions) Login(_ context.Context, id session.Identity) (domain.User, error) {
	if id.Email == "" {
		return domain.User{}, session.ErrInvalidEmail
	}
	if f.loginErr != nil {
		return domain.User{}, f.loginErr
	}
	u := domain.User{Email: id.Email, Name: id.Name, Role: domain.RoleNone}
	f.mu.Lock()
	f.user = &u
	f.mu.Unlock()
	return u, nil
}

func (f *fakeSessions) Logout(context.Context) error {
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	return nil
}

// fakeConsole implements only what a test sets; other methods panic through
// the nil embedded interface.
type fakeConsole struct {
	Console

	orders  []domain.Order
	filter  admin.OrderFilter
	err     error
	actor   string
	form    admin.ProductForm
	images  []string
	changed []string
}

func (f *fakeConsole) Orders(_ context.Context, filter admin.OrderFilter) ([]domain.Order, error) {
	f.filter = filter
	return f.orders, f.err
}

func (f *fakeConsole) UpdateStatus(_ context.Context, id string, to domain.OrderStatus) error {
	f.changed = append(f.changed, id+"="+string(to))
	return f.err
}

func (f *fakeConsole) MarkPaid(_ context.Context, id string) error {
	f.changed = append(f.changed, id+"=paid")
	return f.err
}

func (f *fakeConsole) CreateProduct(_ context.Context, actor string, form admin.ProductForm) (string, error) {
	f.actor = actor
	f.form = form
	for _, img := range form.Images {
		if img != nil {
			f.images = append(f.images, img.Name)
		}
	}
	return "new-id", f.err
}

func (f *fakeConsole) CreateCategory(_ context.Context, actor string, index int, name string) (string, error) {
	f.actor = actor
	f.changed = append(f.changed, name)
	return "cat-id", f.err
}

type fixture struct {
	store    *cart.Store
	catalog  *fakeCatalog
	checkout *fakeCheckout
	sessions *fakeSessions
	console  *fakeConsole
	feed     *notify.Feed
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	feed := notify.NewFeed(time.Minute)
	t.Cleanup(func() { _ = feed.Close() })

	f := &fixture{
		store: cart.NewStore(context.Background(), slot.NewMemory(), "test", feed, nil, nil),
		catalog: &fakeCatalog{products: map[string]domain.Product{
			"p1": {ID: "p1", Name: "Frying Pan", Price: 150, DiscountedPrice: 100, Category: "Cookware", InStock: true},
			"p2": {ID: "p2", Name: "Kettle", Price: 300, DiscountedPrice: 250, Category: "Kitchen", InStock: true},
			"p3": {ID: "p3", Name: "Sold Out Pot", Price: 90, DiscountedPrice: 90, Category: "Cookware", InStock: false},
		}},
		checkout: &fakeCheckout{},
		sessions: &fakeSessions{},
		console:  &fakeConsole{},
		feed:     feed,
	}

	timeout := 5 * time.Second
	f.router = NewRouter(Handlers{
		Cart:     NewCartHandler(f.store, f.catalog, pricing.DefaultPolicy(), feed, timeout),
		Products: NewProductHandler(f.catalog, feed, timeout),
		Checkout: NewCheckoutHandler(f.checkout, f.sessions, timeout, 1<<20),
		Orders:   NewOrdersHandler(f.catalog, feed, timeout),
		Session:  NewSessionHandler(f.sessions, feed, timeout, 1<<20),
		Admin:    NewAdminHandler(f.console, timeout, 1<<20),
		Users:    f.sessions,
	}, timeout)
	return f
}

func (f *fixture) login(role domain.UserRole) {
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	f.sessions.user = &domain.User{Email: "staff@example.com", Role: role}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.NotNil(t, rec)
	return rec
}

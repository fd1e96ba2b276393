package admin

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

type statusPatch struct {
	id     string
	status string
}

type mockBackend struct {
	mu sync.Mutex

	orders   []domain.Order
	products map[string]domain.Product
	stats    []domain.OrderDayStat
	users    []domain.User

	ordersErr error
	writeErr  error

	statusPatches  []statusPatch
	paymentPatches []statusPatch
	deletedOrders  []string
	created        []domain.Product
	updated        []domain.Product
	categories     []domain.Category
	banners        []domain.Banner
	deletedIDs     []string
}

func (m *mockBackend) AdminOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ordersErr != nil {
		return nil, m.ordersErr
	}
	return append([]domain.Order(nil), m.orders...), nil
}

func (m *mockBackend) PatchOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusPatches = append(m.statusPatches, statusPatch{id, string(status)})
	return m.writeErr
}

func (m *mockBackend) PatchPaymentStatus(_ context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentPatches = append(m.paymentPatches, statusPatch{id, string(status)})
	return m.writeErr
}

func (m *mockBackend) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedOrders = append(m.deletedOrders, id)
	return m.writeErr
}

func (m *mockBackend) OrderStats(context.Context) ([]domain.OrderDayStat, error) {
	return m.stats, nil
}

func (m *mockBackend) AdminProducts(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockBackend) AdminProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, errors.New("not found")
	}
	return p, nil
}

func (m *mockBackend) CreateProduct(_ context.Context, p domain.Product) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, p)
	if m.writeErr != nil {
		return "", m.writeErr
	}
	return "new-id", nil
}

func (m *mockBackend) UpdateProduct(_ context.Context, _ string, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, p)
	return m.writeErr
}

func (m *mockBackend) DeleteProduct(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.writeErr
}

func (m *mockBackend) Categories(context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockBackend) Banners(context.Context) ([]domain.Banner, error) {
	return m.banners, nil
}

func (m *mockBackend) CreateCategory(_ context.Context, cat domain.Category) (string, error) {
	m.categories = append(m.categories, cat)
	return "cat-id", m.writeErr
}

func (m *mockBackend) UpdateCategory(_ context.Context, _ string, cat domain.Category) error {
	m.categories = append(m.categories, cat)
	return m.writeErr
}

func (m *mockBackend) CreateBanner(_ context.Context, b domain.Banner) (string, error) {
	m.banners = append(m.banners, b)
	return "banner-id", m.writeErr
}

func (m *mockBackend) UpdateBanner(_ context.Context, _ string, b domain.Banner) error {
	m.banners = append(m.banners, b)
	return m.writeErr
}

func (m *mockBackend) DeleteSetting(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.writeErr
}

func (m *mockBackend) Customers(context.Context) ([]domain.User, error) {
	return m.users, nil
}

// mockUploader fails any file whose name is in fail.
type mockUploader struct {
	fail    map[string]bool
	uploads []string
}

func (u *mockUploader) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if u.fail[name] {
		return "", errors.New("upload refused")
	}
	_, _ = io.ReadAll(r)
	u.uploads = append(u.uploads, name)
	return "https://cdn.example/" + name, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recordingNotifier) Notify(level notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notify.Notice{Level: level, Message: message})
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Message)
	}
	return out
}

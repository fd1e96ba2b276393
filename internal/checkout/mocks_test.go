package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/events"
	"github.com/mrirakib04/sks-web/internal/notify"
)

type mockBackend struct {
	mu sync.RWMutex

	codID       string
	codErr      error
	redirect    string
	sslErr      error
	orders      map[string]domain.Order
	drafts      []domain.OrderDraft
	orderCalls  int
	createCalls int
}

func (m *mockBackend) CreateCODOrder(_ context.Context, draft domain.OrderDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.drafts = append(m.drafts, draft)
	return m.codID, m.codErr
}

func (m *mockBackend) CreateSSLOrder(_ context.Context, draft domain.OrderDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.drafts = append(m.drafts, draft)
	return m.redirect, m.sslErr
}

func (m *mockBackend) Order(_ context.Context, id string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderCalls++
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, errors.New("network error")
	}
	return o, nil
}

func (m *mockBackend) Calls() (create, order int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.createCalls, m.orderCalls
}

type staticAuth bool

func (a staticAuth) Authenticated() bool { return bool(a) }

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

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

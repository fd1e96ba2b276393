package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/events"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/slot"
)

const (
	RemovedNotice = "Item removed from cart!"

	saveTimeout = 5 * time.Second
)

// Store owns the shopper's cart. Mutations are serialized and each one is
// followed by a best-effort save; callers only ever see snapshots.
type Store struct {
	mu   sync.Mutex
	cart domain.Cart

	slot     slot.Slot
	key      string
	notifier notify.Notifier
	events   events.Publisher
	log      *slog.Logger
}

// NewStore loads the initial cart from s. key identifies the shopper in
// published events.
func NewStore(ctx context.Context, s slot.Slot, key string, notifier notify.Notifier, publisher events.Publisher, log *slog.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	st := &Store{
		slot:     s,
		key:      key,
		notifier: notifier,
		events:   publisher,
		log:      log.With("component", "cart"),
	}
	st.Reload(ctx)
	return st
}

// Reload replaces the in-memory cart with whatever the slot holds now.
func (s *Store) Reload(ctx context.Context) LoadOutcome {
	c, outcome := LoadCart(ctx, s.slot)

	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()

	switch outcome {
	case LoadMalformed:
		s.log.Warn("cart slot content is malformed, starting empty")
	case LoadUnavailable:
		s.log.Warn("cart slot unavailable, starting empty")
	default:
		s.log.Debug("cart loaded", "outcome", outcome.String(), "items", c.Len())
	}
	return outcome
}

func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) AddToCart(ctx context.Context, p domain.Product) domain.Cart {
	next := s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Add(p) })

	item, _ := next.Find(p.ID)
	s.publish(ctx, events.TypeCartItemAdded, map[string]any{
		"product_id": p.ID,
		"quantity":   item.Quantity,
	})
	return next
}

func (s *Store) RemoveFromCart(ctx context.Context, id string) domain.Cart {
	next := s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Remove(id) })

	s.notifier.Notify(notify.LevelWarning, RemovedNotice)
	s.publish(ctx, events.TypeCartItemRemoved, map[string]any{"product_id": id})
	return next
}

func (s *Store) IncreaseQuantity(ctx context.Context, id string) domain.Cart {
	next := s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Increase(id) })
	s.publishQuantity(ctx, next, id)
	return next
}

func (s *Store) DecreaseQuantity(ctx context.Context, id string) domain.Cart {
	next := s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Decrease(id) })
	s.publishQuantity(ctx, next, id)
	return next
}

// Clear empties the cart after a confirmed order.
func (s *Store) Clear(ctx context.Context) domain.Cart {
	next := s.apply(ctx, func(domain.Cart) domain.Cart { return domain.Cart{} })
	s.publish(ctx, events.TypeCartCleared, nil)
	return next
}

func (s *Store) apply(ctx context.Context, fn func(domain.Cart) domain.Cart) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = fn(s.cart)
	s.save(ctx)
	return s.cart.Clone()
}

// save runs under s.mu so slot writes land in mutation order. It outlives a
// cancelled request context.
func (s *Store) save(ctx context.Context) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := SaveCart(saveCtx, s.slot, s.cart); err != nil {
		s.log.Error("cart save failed", "error", err)
	}
}

func (s *Store) publishQuantity(ctx context.Context, c domain.Cart, id string) {
	item, ok := c.Find(id)
	if !ok {
		return
	}
	s.publish(ctx, events.TypeCartItemQuantity, map[string]any{
		"product_id": id,
		"quantity":   item.Quantity,
	})
}

func (s *Store) publish(ctx context.Context, eventType string, data any) {
	err := s.events.Publish(context.WithoutCancel(ctx), events.Event{
		Type:       eventType,
		Key:        s.key,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("cart event publish failed", "type", eventType, "error", err)
	}
}

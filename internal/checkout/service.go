package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/events"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/pricing"
)

const (
	NoticeEmptyCart     = "Your cart is empty!"
	NoticeMissingFields = "Please fill all required fields!"
	NoticeLoginRequired = "Please login to continue with SSL Payment"
	NoticeCODFailed     = "Failed to place order!"
	NoticeSSLFailed     = "SSL Payment initiation failed!"
	NoticeCODPlaced     = "Order placed successfully (Cash on Delivery)!"
	NoticeFetchFailed   = "Failed to fetch order info"

	LoginPath   = "/login"
	SuccessPath = "/order-success"
)

type Backend interface {
	CreateCODOrder(ctx context.Context, draft domain.OrderDraft) (string, error)
	CreateSSLOrder(ctx context.Context, draft domain.OrderDraft) (string, error)
	Order(ctx context.Context, id string) (domain.Order, error)
}

type CartStore interface {
	Cart() domain.Cart
	Clear(ctx context.Context) domain.Cart
}

type Authenticator interface {
	Authenticated() bool
}

// Result tells the caller where the shopper goes next. Next is a local path
// for COD and the gateway URL for SSL.
type Result struct {
	Method      domain.PaymentMethod `json:"method"`
	Next        string               `json:"next"`
	OrderID     string               `json:"order_id,omitempty"`
	RedirectURL string               `json:"redirect_url,omitempty"`
	Totals      pricing.Totals       `json:"totals"`
}

type Service struct {
	backend  Backend
	cart     CartStore
	auth     Authenticator
	policy   pricing.Policy
	notifier notify.Notifier
	events   events.Publisher
	log      *slog.Logger
}

func NewService(b Backend, cart CartStore, auth Authenticator, policy pricing.Policy, notifier notify.Notifier, publisher events.Publisher, log *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:  b,
		cart:     cart,
		auth:     auth,
		policy:   policy,
		notifier: notifier,
		events:   publisher,
		log:      log.With("component", "checkout"),
	}
}

// Submit validates locally, then sends one order request. The cart is
// snapshotted up front and never cleared here; clearing waits for the
// confirmation view.
func (s *Service) Submit(ctx context.Context, method domain.PaymentMethod, customer domain.Customer) (Result, error) {
	switch method {
	case domain.PaymentCOD:
		return s.submitCOD(ctx, customer)
	case domain.PaymentSSL:
		return s.submitSSL(ctx, customer)
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}
}

func (s *Service) submitCOD(ctx context.Context, customer domain.Customer) (Result, error) {
	cart := s.cart.Cart()
	if cart.IsEmpty() {
		s.notifier.Notify(notify.LevelError, NoticeEmptyCart)
		return Result{}, ErrEmptyCart
	}
	if err := Validate(customer); err != nil {
		s.notifier.Notify(notify.LevelError, NoticeMissingFields)
		return Result{}, err
	}

	draft := s.Draft(cart, customer, domain.PaymentCOD)
	orderID, err := s.backend.CreateCODOrder(ctx, draft)
	if err != nil {
		s.log.Error("cod order failed", "error", err)
		s.notifier.Notify(notify.LevelError, NoticeCODFailed)
		return Result{}, fmt.Errorf("%w: %v", ErrPlaceOrder, err)
	}

	s.notifier.Notify(notify.LevelSuccess, NoticeCODPlaced)
	s.log.Info("cod order placed", "order_id", orderID, "net_total", draft.NetTotal)
	return Result{
		Method:  domain.PaymentCOD,
		Next:    SuccessPath + "?orderId=" + url.QueryEscape(orderID),
		OrderID: orderID,
		Totals:  totalsOf(draft),
	}, nil
}

func (s *Service) submitSSL(ctx context.Context, customer domain.Customer) (Result, error) {
	if s.auth == nil || !s.auth.Authenticated() {
		s.notifier.Notify(notify.LevelWarning, NoticeLoginRequired)
		return Result{Method: domain.PaymentSSL, Next: LoginPath}, ErrLoginRequired
	}
	if err := Validate(customer); err != nil {
		s.notifier.Notify(notify.LevelError, NoticeMissingFields)
		return Result{}, err
	}
	cart := s.cart.Cart()
	if cart.IsEmpty() {
		s.notifier.Notify(notify.LevelError, NoticeEmptyCart)
		return Result{}, ErrEmptyCart
	}

	draft := s.Draft(cart, customer, domain.PaymentSSL)
	redirect, err := s.backend.CreateSSLOrder(ctx, draft)
	if err != nil {
		s.log.Error("ssl payment initiation failed", "error", err)
		s.notifier.Notify(notify.LevelError, NoticeSSLFailed)
		return Result{}, fmt.Errorf("%w: %v", ErrPlaceOrder, err)
	}

	s.log.Info("ssl payment initiated", "net_total", draft.NetTotal)
	return Result{
		Method:      domain.PaymentSSL,
		Next:        redirect,
		RedirectURL: redirect,
		Totals:      totalsOf(draft),
	}, nil
}

// Draft builds the order body. City and state follow the district, which is
// all the form asks for.
func (s *Service) Draft(cart domain.Cart, customer domain.Customer, method domain.PaymentMethod) domain.OrderDraft {
	totals := s.policy.Compute(cart, customer.District)
	items := cart.Clone().Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return domain.OrderDraft{
		Customer:    customer,
		Cart:        items,
		TotalPrice:  totals.Subtotal,
		DeliveryFee: totals.DeliveryFee,
		NetTotal:    totals.NetTotal,
		Method:      method,
		City:        customer.District,
		State:       customer.District,
		OrderStatus: domain.OrderStatusPending,
	}
}

// Validate checks the required contact fields. The backend validates again.
func Validate(c domain.Customer) error {
	var missing []string
	for _, f := range []struct {
		name  string
		blank bool
	}{
		{"name", strings.TrimSpace(c.Name) == ""},
		{"email", strings.TrimSpace(c.Email) == ""},
		{"phone", strings.TrimSpace(c.Phone) == ""},
		{"address", strings.TrimSpace(c.Address) == ""},
		{"district", strings.TrimSpace(c.District) == ""},
		{"postcode", c.Postcode <= 0},
	} {
		if f.blank {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func totalsOf(d domain.OrderDraft) pricing.Totals {
	return pricing.Totals{
		Region:      d.District,
		Subtotal:    d.TotalPrice,
		DeliveryFee: d.DeliveryFee,
		NetTotal:    d.NetTotal,
	}
}

func (s *Service) publishPlaced(ctx context.Context, order domain.Order) {
	err := s.events.Publish(context.WithoutCancel(ctx), events.Event{
		Type: events.TypeOrderPlaced,
		Key:  order.ID,
		Data: map[string]any{
			"order_id":  order.ID,
			"method":    order.Method.String(),
			"net_total": order.NetTotal,
			"items":     len(order.Cart),
		},
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("order event publish failed", "order_id", order.ID, "error", err)
	}
}

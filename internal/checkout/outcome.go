package checkout

import (
	"context"
	"fmt"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

// Outcome is where the payment gateway, or the COD flow, sends the shopper
// back to.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeFail
	OutcomeCancel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFail:
		return "fail"
	case OutcomeCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

type OutcomeView struct {
	Outcome     string        `json:"outcome"`
	Order       *domain.Order `json:"order,omitempty"`
	Invoice     *Invoice      `json:"invoice,omitempty"`
	CartCleared bool          `json:"cart_cleared"`
}

// Confirm backs the three outcome views. Each fetches the order when an id
// is given. Only a success whose order fetch succeeded clears the cart.
func (s *Service) Confirm(ctx context.Context, outcome Outcome, orderID string) (OutcomeView, error) {
	view := OutcomeView{Outcome: outcome.String()}
	if orderID == "" {
		return view, nil
	}

	order, err := s.backend.Order(ctx, orderID)
	if err != nil {
		s.log.Error("order fetch failed", "order_id", orderID, "outcome", outcome.String(), "error", err)
		s.notifier.Notify(notify.LevelError, NoticeFetchFailed)
		return view, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	view.Order = &order

	if outcome == OutcomeSuccess {
		s.cart.Clear(ctx)
		view.CartCleared = true
		inv := NewInvoice(order)
		view.Invoice = &inv
		s.publishPlaced(ctx, order)
	}
	return view, nil
}

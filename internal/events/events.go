package events

import (
	"context"
	"time"
)

const (
	TypeCartItemAdded    = "cart.item.added"
	TypeCartItemRemoved  = "cart.item.removed"
	TypeCartItemQuantity = "cart.item.quantity"
	TypeCartCleared      = "cart.cleared"
	TypeOrderPlaced      = "order.placed"
)

// Event is an activity record about the shopper's cart or orders. Key groups
// events of one shopper onto one partition.
type Event struct {
	Type       string
	Key        string
	Data       any
	OccurredAt time.Time
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

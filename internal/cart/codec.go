package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/slot"
)

// LoadOutcome says what LoadCart found in the slot. Every outcome other than
// LoadLoaded comes with an empty cart.
type LoadOutcome int

const (
	LoadLoaded LoadOutcome = iota
	LoadEmpty
	LoadMalformed
	LoadUnavailable
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadLoaded:
		return "loaded"
	case LoadEmpty:
		return "empty"
	case LoadMalformed:
		return "malformed"
	case LoadUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

var ErrMalformedCart = errors.New("malformed cart payload")

// LoadCart reads the slot and never fails: a missing, unreadable or
// malformed payload yields an empty cart and the matching outcome.
func LoadCart(ctx context.Context, s slot.Slot) (domain.Cart, LoadOutcome) {
	data, err := s.Read(ctx)
	if errors.Is(err, slot.ErrSlotEmpty) {
		return domain.Cart{}, LoadEmpty
	}
	if err != nil {
		return domain.Cart{}, LoadUnavailable
	}

	c, err := decodeCart(data)
	if err != nil {
		return domain.Cart{}, LoadMalformed
	}
	return c, LoadLoaded
}

func SaveCart(ctx context.Context, s slot.Slot, c domain.Cart) error {
	data, err := encodeCart(c)
	if err != nil {
		return err
	}
	if err := s.Write(ctx, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// encodeCart writes the bare JSON array of line items, the layout the
// storefront has always kept in its cart slot.
func encodeCart(c domain.Cart) ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

func decodeCart(data []byte) (domain.Cart, error) {
	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		switch {
		case item.ID == "":
			return domain.Cart{}, fmt.Errorf("%w: item %d has no id", ErrMalformedCart, i)
		case item.Quantity < 1:
			return domain.Cart{}, fmt.Errorf("%w: item %s has quantity %d", ErrMalformedCart, item.ID, item.Quantity)
		case item.UnitPrice < 0 || item.DiscountedUnitPrice < 0:
			return domain.Cart{}, fmt.Errorf("%w: item %s has a negative price", ErrMalformedCart, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return domain.Cart{}, fmt.Errorf("%w: duplicate item %s", ErrMalformedCart, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	if len(items) == 0 {
		return domain.Cart{}, nil
	}
	return domain.Cart{Items: items}, nil
}

package domain

// ProductSnapshot holds the display fields copied from the catalog when an item
// is added. It is not refreshed afterwards.
type ProductSnapshot struct {
	Name     string   `json:"name"`
	Images   []string `json:"images,omitempty"`
	Category string   `json:"category,omitempty"`
}

// CartLineItem keeps the JSON field names the storefront has always written to
// the cart slot, so carts saved by older clients still load.
type CartLineItem struct {
	ID                  string  `json:"_id"`
	UnitPrice           float64 `json:"price"`
	DiscountedUnitPrice float64 `json:"discountedPrice"`
	Quantity            int     `json:"quantity"`
	ProductSnapshot
}

// Cart is an immutable value: every mutation returns a new Cart and leaves the
// receiver untouched.
type Cart struct {
	Items []CartLineItem
}

func NewCart(items ...CartLineItem) Cart {
	return Cart{Items: cloneItems(items)}
}

func (c Cart) Len() int {
	return len(c.Items)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Find(id string) (CartLineItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartLineItem{}, false
}

func (c Cart) Clone() Cart {
	return Cart{Items: cloneItems(c.Items)}
}

// Add increments the quantity of an existing line or appends a new line with
// quantity 1 and a price/display snapshot of p.
func (c Cart) Add(p Product) Cart {
	if _, ok := c.Find(p.ID); ok {
		return c.Increase(p.ID)
	}
	next := c.Clone()
	next.Items = append(next.Items, CartLineItem{
		ID:                  p.ID,
		UnitPrice:           p.Price,
		DiscountedUnitPrice: p.DiscountedPrice,
		Quantity:            1,
		ProductSnapshot: ProductSnapshot{
			Name:     p.Name,
			Images:   append([]string(nil), p.Images...),
			Category: p.Category,
		},
	})
	return next
}

func (c Cart) Remove(id string) Cart {
	next := Cart{Items: make([]CartLineItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if item.ID != id {
			next.Items = append(next.Items, cloneItem(item))
		}
	}
	return next
}

func (c Cart) Increase(id string) Cart {
	return c.mapItem(id, func(item CartLineItem) CartLineItem {
		item.Quantity++
		return item
	})
}

// Decrease never takes a line below quantity 1 and never removes it.
func (c Cart) Decrease(id string) Cart {
	return c.mapItem(id, func(item CartLineItem) CartLineItem {
		if item.Quantity > 1 {
			item.Quantity--
		} else {
			item.Quantity = 1
		}
		return item
	})
}

func (c Cart) mapItem(id string, fn func(CartLineItem) CartLineItem) Cart {
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].ID == id {
			next.Items[i] = fn(next.Items[i])
		}
	}
	return next
}

func cloneItems(items []CartLineItem) []CartLineItem {
	if items == nil {
		return nil
	}
	out := make([]CartLineItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func cloneItem(item CartLineItem) CartLineItem {
	item.Images = append([]string(nil), item.Images...)
	return item
}

package checkout

import (
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/shopspring/decimal"
)

type InvoiceLine struct {
	No       int     `json:"no"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Invoice is the payment receipt shown on the success view. Lines are priced
// at the list price; the order's totals carry the discount.
type Invoice struct {
	OrderID       string        `json:"order_id"`
	Customer      string        `json:"customer"`
	Email         string        `json:"email"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     string        `json:"created_at"`
	Lines         []InvoiceLine `json:"lines"`
	DeliveryFee   float64       `json:"delivery_fee"`
	NetTotal      float64       `json:"net_total"`
}

func NewInvoice(o domain.Order) Invoice {
	inv := Invoice{
		OrderID:       o.ID,
		Customer:      orNA(o.Customer.Name),
		Email:         orNA(o.Customer.Email),
		TransactionID: orNA(o.PaymentInfo.TransactionID),
		CreatedAt:     o.CreatedAt,
		Lines:         make([]InvoiceLine, 0, len(o.Cart)),
		DeliveryFee:   o.DeliveryFee,
		NetTotal:      o.NetTotal,
	}
	for i, item := range o.Cart {
		total := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		inv.Lines = append(inv.Lines, InvoiceLine{
			No:       i + 1,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
			Total:    total.InexactFloat64(),
		})
	}
	return inv
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

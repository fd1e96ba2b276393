package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is a closed set. Code that branches on it should switch over
// every value and fail on the default case.
type PaymentMethod int

const (
	PaymentCOD PaymentMethod = iota + 1
	PaymentSSL
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COD":
		return PaymentCOD, nil
	case "SSL":
		return PaymentSSL, nil
	default:
		return 0, fmt.Errorf("unknown payment method %q", s)
	}
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCOD:
		return "COD"
	case PaymentSSL:
		return "SSL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON writes the zero value, an order the backend stored without a
// method, as null.
func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	switch m {
	case 0:
		return []byte("null"), nil
	case PaymentCOD, PaymentSSL:
		return json.Marshal(m.String())
	default:
		return nil, fmt.Errorf("cannot marshal payment method %d", int(m))
	}
}

// UnmarshalJSON leaves null and "" as the zero value. Submission paths reject
// the zero value themselves.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*m = 0
		return nil
	}
	parsed, err := ParsePaymentMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRejected  OrderStatus = "rejected"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusShipping, OrderStatusRejected},
	OrderStatusShipping: {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// PaymentStatus values are the ones the backend and the payment gateway write;
// "VALID" is the gateway's word for a settled payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusValid   PaymentStatus = "VALID"
)

// Customer is the checkout form.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	District string `json:"district"`
	Postcode int    `json:"postcode"`
	Country  string `json:"country"`
	Notes    string `json:"notes"`
}

const (
	DefaultDistrict = "Dhaka"
	DefaultPostcode = 1100
	DefaultCountry  = "Bangladesh"
)

// NewCustomerForm returns the checkout form as it starts out.
func NewCustomerForm(email string) Customer {
	return Customer{
		Email:    email,
		District: DefaultDistrict,
		Postcode: DefaultPostcode,
		Country:  DefaultCountry,
	}
}

// OrderDraft is the body of POST /orders/cod and POST /orders/ssl. The backend
// expects the customer fields at the top level, next to the cart.
type OrderDraft struct {
	Customer
	Cart        []CartLineItem `json:"cart"`
	TotalPrice  float64        `json:"totalPrice"`
	DeliveryFee float64        `json:"deliveryFee"`
	NetTotal    float64        `json:"netTotal"`
	Method      PaymentMethod  `json:"method"`
	City        string         `json:"city"`
	State       string         `json:"state"`
	OrderStatus OrderStatus    `json:"orderStatus"`
}

type PaymentInfo struct {
	TransactionID string        `json:"transactionId,omitempty"`
	Status        PaymentStatus `json:"status,omitempty"`
}

type Order struct {
	ID            string         `json:"_id"`
	Customer      Customer       `json:"customer"`
	Cart          []CartLineItem `json:"cart"`
	TotalPrice    float64        `json:"totalPrice"`
	DeliveryFee   float64        `json:"deliveryFee"`
	NetTotal      float64        `json:"netTotal"`
	Method        PaymentMethod  `json:"method"`
	OrderStatus   OrderStatus    `json:"orderStatus"`
	PaymentStatus PaymentStatus  `json:"paymentStatus,omitempty"`
	PaymentInfo   PaymentInfo    `json:"paymentInfo"`
	CreatedAt     string         `json:"createdAt,omitempty"`
}

// IsPaid reports whether either the gateway or an admin settled the payment.
func (o Order) IsPaid() bool {
	return o.PaymentInfo.Status == PaymentStatusValid || o.PaymentStatus == PaymentStatusValid
}

// OrderDayStat is one bar of the admin dashboard's recent-orders chart.
type OrderDayStat struct {
	Day string `json:"day"`
	COD int    `json:"cod"`
	SSL int    `json:"ssl"`
}

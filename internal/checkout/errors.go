package checkout

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrMissingFields    = errors.New("required checkout fields are missing")
	ErrLoginRequired    = errors.New("login required for gateway payment")
	ErrPlaceOrder       = errors.New("failed to place order")
	ErrUnknownMethod    = errors.New("unknown payment method")
	ErrOrderUnavailable = errors.New("failed to fetch order")
)

// ValidationError names the blank required fields.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingFields
}

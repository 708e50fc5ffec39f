package order

import "errors"

// ErrOrderNotFound is returned when no order matches the requested identifier.
var ErrOrderNotFound = errors.New("order not found")

// Order is a purchase record customers ask the assistant about.
type Order struct {
	OrderID   string `json:"orderId"`
	UserEmail string `json:"userEmail"`
	Status    string `json:"status"`
}

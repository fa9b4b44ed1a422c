// Package domain holds the order entities and the status machine.
package domain

import (
	"strings"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// Status is an order's lifecycle state. The set is fixed and closed.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var allowedStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus normalizes raw case-insensitively to uppercase and validates
// it against the closed status set. Any-to-any transitions are legal, so
// parsing is the only status validation the core performs.
func ParseStatus(raw string) (Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fault.Validation("status is required")
	}
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := allowedStatuses[s]; !ok {
		return "", fault.Validation("invalid status: %s", raw)
	}
	return s, nil
}

// Line is an immutable snapshot of one purchased product: id, size,
// quantity, and the unit price at time of purchase. It is owned exclusively
// by its Order and never mutated after assembly.
type Line struct {
	ID        string
	ProductID string
	Size      int
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

// Order is immutable once created except for Status and UpdatedAt. Total
// always equals the sum of its lines' subtotals at creation time; it is
// never recomputed from current catalog prices.
type Order struct {
	ID              string
	UserID          string
	Number          string
	Status          Status
	Total           float64
	ShippingAddress string
	PhoneNumber     string
	Lines           []Line
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

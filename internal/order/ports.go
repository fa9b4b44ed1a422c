package order

import (
	"context"
	"errors"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
)

// ErrNumberTaken reports an order-number uniqueness violation on Insert.
// The checkout service retries generation when it sees this sentinel.
var ErrNumberTaken = errors.New("order number already taken")

// Repository is the port for order persistence. Orders are written once
// with their lines; afterwards only status and updated_at change.
type Repository interface {
	// Insert persists the order and its lines. Returns ErrNumberTaken when
	// another order already holds the same number.
	Insert(ctx context.Context, o domain.Order) error

	// Delete removes the order and its lines. Only checkout compensation
	// calls it.
	Delete(ctx context.Context, orderID string) error

	// FindByID returns the order with its lines, or fault.NotFound.
	FindByID(ctx context.Context, orderID string) (domain.Order, error)

	// FindByUser returns the user's orders with lines, newest first.
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// FindAll returns every order with lines, newest first.
	FindAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus overwrites the order's status and updated_at, returning
	// the updated order or fault.NotFound.
	UpdateStatus(ctx context.Context, orderID string, status domain.Status, updatedAt time.Time) (domain.Order, error)

	// Count reports the number of persisted orders, for the admin dashboard.
	Count(ctx context.Context) (int, error)
}

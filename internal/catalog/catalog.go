// Package catalog is the fulfillment core's view of the product catalog,
// an external collaborator. The core reads products and decrements stock;
// it never creates products and never increments stock except to undo its
// own reservations during checkout rollback.
package catalog

import "context"

// Product is a point-in-time snapshot of a catalog record.
type Product struct {
	ID    string
	Name  string
	Price float64
	Stock int
	Sizes []int
}

// Store is the port consumed by the cart and checkout services.
//
// Reserve is the critical shared-resource section: it must perform the
// stock check and the decrement as one atomic operation per product, so
// two concurrent checkouts for the last unit can never both pass.
type Store interface {
	// GetProduct returns the authoritative product record.
	// Returns fault.NotFound for unknown ids.
	GetProduct(ctx context.Context, id string) (Product, error)

	// Reserve atomically checks that the product has at least qty units in
	// stock and decrements by qty. Returns fault.InsufficientStock (naming
	// the product) when stock is short, fault.NotFound for unknown ids.
	Reserve(ctx context.Context, id string, qty int) error

	// Release returns qty units to stock. Only checkout compensation may
	// call it; it is the sole path that increments stock.
	Release(ctx context.Context, id string, qty int) error
}

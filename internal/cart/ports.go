package cart

import (
	"context"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
)

// Repository is the port for cart line persistence. Implementations must
// uphold the one-line-per-(user, product, size) constraint on Save and
// return lines from FindByUser in insertion order.
type Repository interface {
	// FindByUser returns every line owned by the user, oldest first.
	FindByUser(ctx context.Context, userID string) ([]domain.Line, error)

	// FindByID returns the line only if it belongs to the user; otherwise
	// fault.NotFound.
	FindByID(ctx context.Context, userID, lineID string) (domain.Line, error)

	// FindBySelector looks up the user's line for a (product, size) pair.
	// Returns fault.NotFound when no such line exists.
	FindBySelector(ctx context.Context, userID, productID string, size int) (domain.Line, error)

	// Save inserts the line or, when a line with the same (user, product,
	// size) already exists, overwrites its quantity.
	Save(ctx context.Context, line domain.Line) (domain.Line, error)

	// Delete removes the user's line. Returns fault.NotFound when the line
	// does not exist or belongs to someone else.
	Delete(ctx context.Context, userID, lineID string) error

	// DeleteByUser removes every line owned by the user.
	DeleteByUser(ctx context.Context, userID string) error
}

// Package domain holds the cart entities.
package domain

// Size and quantity bounds for a cart line. Sizes are EU shoe sizes.
const (
	MinSize     = 36
	MaxSize     = 50
	MinQuantity = 1
	MaxQuantity = 100
)

// Line is one (user, product, size) reservation-in-progress with a
// quantity. At most one Line exists per (user, product, size) triple;
// duplicate adds merge quantities instead of creating a second row.
type Line struct {
	ID        string
	UserID    string
	ProductID string
	Size      int
	Quantity  int
}

package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	cartdomain "github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/catalog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/ordernum"
)

// assembly is the order under construction, shared between the steps of
// one checkout. Only the owning checkout goroutine touches it.
type assembly struct {
	order domain.Order
}

// --- reserveStockStep ---

// reservation records one applied stock decrement so compensation can
// restore exactly what this checkout took.
type reservation struct {
	productID string
	qty       int
}

// reserveStockStep walks the cart snapshot in order, re-fetches the
// authoritative product record for each line, atomically reserves stock,
// and builds the order-line snapshots. Unit prices come from the catalog
// at order time, never from what the cart saw earlier.
type reserveStockStep struct {
	catalog  catalog.Store
	lines    []cartdomain.Line
	asm      *assembly
	reserved []reservation
}

func (s *reserveStockStep) Name() string { return "reserve_stock" }

func (s *reserveStockStep) Execute(ctx context.Context) error {
	for _, line := range s.lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}

		if err := s.catalog.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		s.reserved = append(s.reserved, reservation{productID: line.ProductID, qty: line.Quantity})

		subtotal := product.Price * float64(line.Quantity)
		s.asm.order.Lines = append(s.asm.order.Lines, domain.Line{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		s.asm.order.Total += subtotal
	}
	return nil
}

func (s *reserveStockStep) Compensate(ctx context.Context) error {
	var firstErr error
	for i := len(s.reserved) - 1; i >= 0; i-- {
		r := s.reserved[i]
		if err := s.catalog.Release(ctx, r.productID, r.qty); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release %d of product %s: %w", r.qty, r.productID, err)
		}
	}
	return firstErr
}

// --- persistOrderStep ---

// persistOrderStep allocates a unique order number and persists the
// assembled order with its lines. Number collisions are retried up to
// attempts times; the suffix widens on later attempts.
type persistOrderStep struct {
	orders   order.Repository
	numbers  *ordernum.Generator
	attempts int
	asm      *assembly
}

func (s *persistOrderStep) Name() string { return "persist_order" }

func (s *persistOrderStep) Execute(ctx context.Context) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		s.asm.order.Number = s.numbers.Next(attempt)

		err := s.orders.Insert(ctx, s.asm.order)
		if err == nil {
			return nil
		}
		if errors.Is(err, order.ErrNumberTaken) {
			continue
		}
		return err
	}
	return fault.Conflict("could not allocate a unique order number after %d attempts", s.attempts)
}

func (s *persistOrderStep) Compensate(ctx context.Context) error {
	return s.orders.Delete(ctx, s.asm.order.ID)
}

// --- clearCartStep ---

// clearCartStep sweeps the user's cart once the order is committed. Its
// compensation restores the snapshot taken before clearing, preserving
// line ids and insertion order.
type clearCartStep struct {
	carts    cart.Repository
	userID   string
	snapshot []cartdomain.Line
}

func (s *clearCartStep) Name() string { return "clear_cart" }

func (s *clearCartStep) Execute(ctx context.Context) error {
	return s.carts.DeleteByUser(ctx, s.userID)
}

func (s *clearCartStep) Compensate(ctx context.Context) error {
	var firstErr error
	for _, line := range s.snapshot {
		if _, err := s.carts.Save(ctx, line); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restore cart line %s: %w", line.ID, err)
		}
	}
	return firstErr
}

// Package checkout converts a user's entire cart into a persisted,
// immutable order: it reserves inventory, materializes order lines from
// live catalog records, and clears the cart — as one atomic unit. Any
// failure partway rolls back every stock decrement already applied and
// leaves no partial order behind.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	cartdomain "github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/catalog"
	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator"
	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/ordernum"
	"github.com/jcmexdev/shoe-fulfillment/internal/user"
)

const defaultNumberAttempts = 5

type Service struct {
	carts   cart.Repository
	catalog catalog.Store
	users   user.Directory
	orders  order.Repository
	numbers *ordernum.Generator
	log     checkoutlog.Repository

	numberAttempts int
	now            func() time.Time
}

// Option tweaks a Service built by NewService.
type Option func(*Service)

// WithNumberAttempts sets the order-number collision retry budget.
// Values below 1 are ignored.
func WithNumberAttempts(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.numberAttempts = n
		}
	}
}

// NewService wires the assembler. log may be nil to skip the audit trail.
func NewService(
	carts cart.Repository,
	cat catalog.Store,
	users user.Directory,
	orders order.Repository,
	log checkoutlog.Repository,
	opts ...Option,
) *Service {
	s := &Service{
		carts:          carts,
		catalog:        cat,
		users:          users,
		orders:         orders,
		numbers:        ordernum.New(),
		log:            log,
		numberAttempts: defaultNumberAttempts,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder materializes the user's cart into an order.
//
// The checkout runs as a step sequence — reserve stock, persist order,
// clear cart — through the coordinator, so a failure in any step
// compensates the earlier ones in reverse order: stock decrements are
// released, a persisted order is deleted, and the cart stays as it was.
func (s *Service) CreateOrder(ctx context.Context, userID, shippingAddress, phoneNumber string) (domain.Order, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return domain.Order{}, fault.Validation("shipping address is required")
	}
	if strings.TrimSpace(phoneNumber) == "" {
		return domain.Order{}, fault.Validation("phone number is required")
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.Order{}, err
	}

	lines, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, fault.EmptyCart("cannot create order from empty cart")
	}

	now := s.now()
	asm := &assembly{
		order: domain.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			Status:          domain.StatusPending,
			ShippingAddress: shippingAddress,
			PhoneNumber:     phoneNumber,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	steps := []coordinator.Step{
		&reserveStockStep{catalog: s.catalog, lines: lines, asm: asm},
		&persistOrderStep{orders: s.orders, numbers: s.numbers, attempts: s.numberAttempts, asm: asm},
		&clearCartStep{carts: s.carts, userID: userID, snapshot: lines},
	}

	// The order id doubles as the checkout id so the audit log joins with
	// the order history and with the OTel trace.
	saga := coordinator.NewOrchestrator(asm.order.ID, steps, s.log, checkoutPayload(userID, lines))

	slog.InfoContext(ctx, "starting checkout",
		"checkout_id", asm.order.ID, "user_id", userID, "lines", len(lines))

	if err := saga.Start(ctx); err != nil {
		return domain.Order{}, err
	}

	slog.InfoContext(ctx, "order created",
		"checkout_id", asm.order.ID, "order_number", asm.order.Number, "total", asm.order.Total)
	return asm.order, nil
}

// checkoutPayload serialises the checkout input for the STARTED log row.
func checkoutPayload(userID string, lines []cartdomain.Line) string {
	type lineInput struct {
		ProductID string `json:"product_id"`
		Size      int    `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	in := struct {
		UserID string      `json:"user_id"`
		Lines  []lineInput `json:"lines"`
	}{UserID: userID}
	for _, l := range lines {
		in.Lines = append(in.Lines, lineInput{ProductID: l.ProductID, Size: l.Size, Quantity: l.Quantity})
	}

	b, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return string(b)
}

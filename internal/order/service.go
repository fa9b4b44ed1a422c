// Package order exposes order history reads and the post-creation status
// machine. Order creation itself lives in the checkout package.
package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetUserOrders returns all orders owned by the user, each with its lines.
func (s *Service) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.FindByUser(ctx, userID)
}

// GetAllOrders is the administrative listing; access control is the
// gateway's responsibility.
func (s *Service) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.FindAll(ctx)
}

// GetOrder returns a single order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

// UpdateStatus overwrites the order's status after validating the raw value
// against the closed status set. Transition ordering is deliberately not
// enforced: any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID, raw string) (domain.Order, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, status, s.now())
	if err != nil {
		return domain.Order{}, err
	}

	slog.InfoContext(ctx, "order status updated",
		"order_id", orderID, "status", string(status))
	return updated, nil
}

// Package memory is an in-memory order.Repository for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
)

type Repository struct {
	mu      sync.RWMutex
	orders  map[string]domain.Order
	numbers map[string]string // order number -> order id
}

var _ order.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		orders:  make(map[string]domain.Order),
		numbers: make(map[string]string),
	}
}

func (r *Repository) Insert(ctx context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.numbers[o.Number]; taken {
		return order.ErrNumberTaken
	}
	o.Lines = append([]domain.Line(nil), o.Lines...)
	r.orders[o.ID] = o
	r.numbers[o.Number] = o.ID
	return nil
}

func (r *Repository) Delete(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return fault.NotFound("order not found with id: %s", orderID)
	}
	delete(r.orders, orderID)
	delete(r.numbers, o.Number)
	return nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, fault.NotFound("order not found with id: %s", orderID)
	}
	return copyOrder(o), nil
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, copyOrder(o))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status domain.Status, updatedAt time.Time) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, fault.NotFound("order not found with id: %s", orderID)
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.orders[orderID] = o
	return copyOrder(o), nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders), nil
}

func copyOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.Line(nil), o.Lines...)
	return o
}

func sortNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

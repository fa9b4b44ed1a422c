// Package memory is an in-memory cart.Repository for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	"github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// Repository keeps lines in a per-user slice so FindByUser preserves
// insertion order.
type Repository struct {
	mu    sync.RWMutex
	lines map[string][]domain.Line
}

var _ cart.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{lines: make(map[string][]domain.Line)}
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Line(nil), r.lines[userID]...), nil
}

func (r *Repository) FindByID(ctx context.Context, userID, lineID string) (domain.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.lines[userID] {
		if l.ID == lineID {
			return l, nil
		}
	}
	return domain.Line{}, fault.NotFound("cart item not found")
}

func (r *Repository) FindBySelector(ctx context.Context, userID, productID string, size int) (domain.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.lines[userID] {
		if l.ProductID == productID && l.Size == size {
			return l, nil
		}
	}
	return domain.Line{}, fault.NotFound("cart item not found")
}

func (r *Repository) Save(ctx context.Context, line domain.Line) (domain.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[line.UserID]
	for i, l := range lines {
		// Same line id, or same (product, size) pair: overwrite in place so
		// the uniqueness constraint holds even if the caller raced.
		if l.ID == line.ID || (l.ProductID == line.ProductID && l.Size == line.Size) {
			line.ID = l.ID
			lines[i] = line
			return line, nil
		}
	}
	r.lines[line.UserID] = append(lines, line)
	return line, nil
}

func (r *Repository) Delete(ctx context.Context, userID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[userID]
	for i, l := range lines {
		if l.ID == lineID {
			r.lines[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return fault.NotFound("cart item not found")
}

func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, userID)
	return nil
}

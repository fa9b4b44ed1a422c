package catalog

import (
	"context"
	"sync"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// MemoryStore holds the stock map under a single mutex, so the check and
// the decrement inside Reserve are one critical section.
type MemoryStore struct {
	mu       sync.Mutex
	products map[string]Product
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore seeds the store with the given products.
func NewMemoryStore(products ...Product) *MemoryStore {
	s := &MemoryStore{products: make(map[string]Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, fault.NotFound("product not found with id: %s", id)
	}
	// Copy the sizes slice so callers cannot mutate the stored record.
	p.Sizes = append([]int(nil), p.Sizes...)
	return p, nil
}

func (s *MemoryStore) Reserve(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fault.NotFound("product not found with id: %s", id)
	}
	if p.Stock < qty {
		return fault.InsufficientStock(
			"product %q is out of stock. Available: %d, Requested: %d",
			p.Name, p.Stock, qty,
		)
	}
	p.Stock -= qty
	s.products[id] = p
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fault.NotFound("product not found with id: %s", id)
	}
	p.Stock += qty
	s.products[id] = p
	return nil
}

package checkoutlog

import (
	"context"
	"sync"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// MemoryRepository is an in-memory Repository for tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]*Entry)}
}

func (r *MemoryRepository) Save(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	r.entries[entry.CheckoutID] = append(r.entries[entry.CheckoutID], &e)
	return nil
}

func (r *MemoryRepository) GetLatest(ctx context.Context, checkoutID string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.entries[checkoutID]
	if len(entries) == 0 {
		return nil, fault.NotFound("checkout %s not found", checkoutID)
	}
	e := *entries[len(entries)-1]
	return &e, nil
}

// All returns every entry for a checkout in append order, for assertions.
func (r *MemoryRepository) All(checkoutID string) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries[checkoutID]))
	for _, e := range r.entries[checkoutID] {
		c := *e
		out = append(out, &c)
	}
	return out
}

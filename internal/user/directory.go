// Package user is the fulfillment core's read-only view of the user
// directory, an external collaborator. The caller supplies an already
// authenticated user id; this package only resolves it.
package user

import (
	"context"
	"sync"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

type User struct {
	ID    string
	Name  string
	Email string
	Admin bool
}

// Directory resolves user ids. Returns fault.NotFound for unknown ids.
type Directory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// MemoryDirectory is an in-memory Directory for local development and tests.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]User
}

var _ Directory = (*MemoryDirectory)(nil)

func NewMemoryDirectory(users ...User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[string]User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryDirectory) GetUser(ctx context.Context, id string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, fault.NotFound("user not found with id: %s", id)
	}
	return u, nil
}

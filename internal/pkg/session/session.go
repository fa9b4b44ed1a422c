// Package session tracks authenticated sessions issued by the external auth
// service. The fulfillment core only consumes tokens: it resolves them to a
// user id, touches activity timestamps, and invalidates them on logout.
package session

import (
	"context"
	"time"
)

// Session is one authenticated token for one user.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Store is the port for session persistence. Implementations must be safe
// for concurrent use; lookups are on the hot path of every request.
type Store interface {
	// Create registers (or replaces) the session for a token.
	Create(ctx context.Context, userID, token string) error

	// Lookup resolves a token. Returns fault.NotFound for unknown tokens.
	Lookup(ctx context.Context, token string) (Session, error)

	// Touch bumps the last-activity timestamp. Unknown tokens are a no-op.
	Touch(ctx context.Context, token string) error

	// Invalidate removes the session for a token. Idempotent.
	Invalidate(ctx context.Context, token string) error

	// ActiveCount reports the number of live sessions, for the admin
	// dashboard.
	ActiveCount(ctx context.Context) (int, error)
}

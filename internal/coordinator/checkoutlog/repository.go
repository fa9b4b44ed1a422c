package checkoutlog

import "context"

// Repository is the port for persisting checkout log entries. The
// coordinator depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for in-memory in tests.
type Repository interface {
	// Save appends a new log entry; the log is append-only, never upserted.
	Save(ctx context.Context, entry *Entry) error

	// GetLatest returns the most recent entry for a checkout id, or
	// fault.NotFound. Backs the checkout status endpoint.
	GetLatest(ctx context.Context, checkoutID string) (*Entry, error)
}

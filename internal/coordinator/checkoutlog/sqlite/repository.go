// Package sqlite provides a SQLite-backed implementation of
// checkoutlog.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// schema is the DDL executed once on construction.
// The table is append-only: each row is an immutable event in the
// checkout's lifecycle; the newest row per checkout_id is its current state.
const schema = `
CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier: the order id being materialized.
    -- Not UNIQUE because multiple rows exist per checkout, one per transition.
    checkout_id     TEXT NOT NULL,

    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',

    -- JSON payload that started the checkout. Written once on STARTED.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT NOT NULL DEFAULT '[]',

    -- W3C trace_id / span_id from the active OTel span.
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT (SQLite idiom).
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_checkout_id ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace_id ON checkout_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

var _ checkoutlog.Repository = (*Repository)(nil)

// NewRepository applies the checkout-log schema and returns the repository.
func NewRepository(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply checkout log schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Save inserts a new checkout log entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(checkout_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.CheckoutID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.CheckoutID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a checkout id.
func (r *Repository) GetLatest(ctx context.Context, checkoutID string) (*checkoutlog.Entry, error) {
	const q = `
		SELECT checkout_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   checkout_logs
		WHERE  checkout_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, checkoutID)

	var (
		entry     checkoutlog.Entry
		updatedAt string
	)
	err := row.Scan(
		&entry.CheckoutID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFound("checkout %s not found", checkoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", checkoutID, err)
	}

	entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse time %q: %w", updatedAt, err)
	}

	return &entry, nil
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of an empty TEXT on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Package sqlite provides a SQLite-backed implementation of cart.Repository.
//
// The UNIQUE(user_id, product_id, size) constraint is the storage-level
// backstop for the one-line-per-triple invariant; Save upserts against it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	"github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// schema is the DDL executed once on construction.
// seq preserves insertion order for FindByUser so cart rendering is stable.
const schema = `
CREATE TABLE IF NOT EXISTS cart_lines (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT    NOT NULL UNIQUE,
    user_id    TEXT    NOT NULL,
    product_id TEXT    NOT NULL,
    size       INTEGER NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 1),
    UNIQUE (user_id, product_id, size)
);

CREATE INDEX IF NOT EXISTS idx_cart_lines_user ON cart_lines(user_id, seq);
`

type Repository struct {
	db *sql.DB
}

var _ cart.Repository = (*Repository)(nil)

// NewRepository applies the cart schema and returns the repository.
func NewRepository(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply cart schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Line, error) {
	const q = `
		SELECT id, user_id, product_id, size, quantity
		FROM   cart_lines
		WHERE  user_id = ?
		ORDER  BY seq`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cart for %q: %w", userID, err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Size, &l.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate cart lines: %w", err)
	}
	return lines, nil
}

func (r *Repository) FindByID(ctx context.Context, userID, lineID string) (domain.Line, error) {
	const q = `
		SELECT id, user_id, product_id, size, quantity
		FROM   cart_lines
		WHERE  id = ? AND user_id = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, q, lineID, userID))
}

func (r *Repository) FindBySelector(ctx context.Context, userID, productID string, size int) (domain.Line, error) {
	const q = `
		SELECT id, user_id, product_id, size, quantity
		FROM   cart_lines
		WHERE  user_id = ? AND product_id = ? AND size = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, q, userID, productID, size))
}

func (r *Repository) Save(ctx context.Context, line domain.Line) (domain.Line, error) {
	const q = `
		INSERT INTO cart_lines (id, user_id, product_id, size, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = excluded.quantity`

	if _, err := r.db.ExecContext(ctx, q,
		line.ID, line.UserID, line.ProductID, line.Size, line.Quantity,
	); err != nil {
		return domain.Line{}, fmt.Errorf("sqlite: save cart line for %q: %w", line.UserID, err)
	}

	// Re-read by selector: on a merge the row keeps its original id.
	return r.FindBySelector(ctx, line.UserID, line.ProductID, line.Size)
}

func (r *Repository) Delete(ctx context.Context, userID, lineID string) error {
	const q = `DELETE FROM cart_lines WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, q, lineID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: delete cart line %q: %w", lineID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete cart line %q: %w", lineID, err)
	}
	if n == 0 {
		return fault.NotFound("cart item not found")
	}
	return nil
}

func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM cart_lines WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("sqlite: clear cart for %q: %w", userID, err)
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row) (domain.Line, error) {
	var l domain.Line
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Size, &l.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Line{}, fault.NotFound("cart item not found")
	}
	if err != nil {
		return domain.Line{}, fmt.Errorf("sqlite: scan cart line: %w", err)
	}
	return l, nil
}

// Package sqlite provides a SQLite-backed implementation of order.Repository.
//
// The UNIQUE constraint on orders.number is what enforces order-number
// uniqueness; Insert translates that constraint violation into
// order.ErrNumberTaken so the checkout service can retry generation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
)

// schema is the DDL executed once on construction. Timestamps are RFC3339
// TEXT (SQLite idiom). Lines cascade with their order: compensation deletes
// the order row and the lines go with it.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               TEXT NOT NULL PRIMARY KEY,
    user_id          TEXT NOT NULL,
    number           TEXT NOT NULL UNIQUE,
    status           TEXT NOT NULL,
    total            REAL NOT NULL,
    shipping_address TEXT NOT NULL,
    phone_number     TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS order_lines (
    id         TEXT    NOT NULL PRIMARY KEY,
    order_id   TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id TEXT    NOT NULL,
    size       INTEGER NOT NULL,
    quantity   INTEGER NOT NULL,
    unit_price REAL    NOT NULL,
    subtotal   REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);
`

type Repository struct {
	db *sql.DB
}

var _ order.Repository = (*Repository)(nil)

// NewRepository applies the order schema and returns the repository.
func NewRepository(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply order schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Insert(ctx context.Context, o domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin insert order: %w", err)
	}
	defer tx.Rollback()

	const insertOrder = `
		INSERT INTO orders
			(id, user_id, number, status, total, shipping_address, phone_number, created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertOrder,
		o.ID, o.UserID, o.Number, string(o.Status), o.Total,
		o.ShippingAddress, o.PhoneNumber,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return order.ErrNumberTaken
		}
		return fmt.Errorf("sqlite: insert order %q: %w", o.Number, err)
	}

	const insertLine = `
		INSERT INTO order_lines (id, order_id, product_id, size, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, insertLine,
			l.ID, o.ID, l.ProductID, l.Size, l.Quantity, l.UnitPrice, l.Subtotal,
		); err != nil {
			return fmt.Errorf("sqlite: insert order line for %q: %w", o.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit order %q: %w", o.Number, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", orderID, err)
	}
	if n == 0 {
		return fault.NotFound("order not found with id: %s", orderID)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	const q = selectOrders + ` WHERE id = ?`

	o, err := r.scanOrder(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		return domain.Order{}, err
	}
	if o.Lines, err = r.loadLines(ctx, o.ID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = selectOrders + ` WHERE user_id = ? ORDER BY created_at DESC, id`
	return r.queryOrders(ctx, q, userID)
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Order, error) {
	const q = selectOrders + ` ORDER BY created_at DESC, id`
	return r.queryOrders(ctx, q)
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status domain.Status, updatedAt time.Time) (domain.Order, error) {
	const q = `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, string(status), formatTime(updatedAt), orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: update status of %q: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: update status of %q: %w", orderID, err)
	}
	if n == 0 {
		return domain.Order{}, fault.NotFound("order not found with id: %s", orderID)
	}
	return r.FindByID(ctx, orderID)
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count orders: %w", err)
	}
	return n, nil
}

const selectOrders = `
	SELECT id, user_id, number, status, total, shipping_address, phone_number, created_at, updated_at
	FROM   orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                    domain.Order
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Number, &status, &o.Total,
		&o.ShippingAddress, &o.PhoneNumber, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fault.NotFound("order not found")
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: scan order: %w", err)
	}

	o.Status = domain.Status(status)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Order{}, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate orders: %w", err)
	}

	for i := range orders {
		if orders[i].Lines, err = r.loadLines(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) loadLines(ctx context.Context, orderID string) ([]domain.Line, error) {
	const q = `
		SELECT id, product_id, size, quantity, unit_price, subtotal
		FROM   order_lines
		WHERE  order_id = ?
		ORDER  BY rowid`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load lines of %q: %w", orderID, err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Size, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("sqlite: scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate order lines: %w", err)
	}
	return lines, nil
}

// isUniqueViolation reports whether err is the driver's UNIQUE constraint
// error (SQLITE_CONSTRAINT_UNIQUE).
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

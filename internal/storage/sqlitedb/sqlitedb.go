// Package sqlitedb opens the shared SQLite database used by the cart,
// order, and checkout-log repositories.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the checkout goroutine writes while HTTP handlers read.
package sqlitedb

import (
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO, keeping Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at the given path. Each
// repository applies its own schema on construction.
func Open(path string) (*sql.DB, error) {
	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitedb: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	return db, nil
}

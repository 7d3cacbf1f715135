// Package sqlite is the device's local store: a single embedded SQLite
// database holding the event/sector/code snapshot, the audit log and the
// settings table. The driver is CGO-free, so the binary cross-compiles to
// whatever hardware runs at the gate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite connection shared by all repositories.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the database at path. WAL keeps readers unblocked
// during validation writes; foreign keys enforce the cascade from events
// down to codes; the busy timeout covers the validate-during-sync case.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + url.PathEscape(path) +
		"?_pragma=journal_mode(wal)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=foreign_keys(on)"

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Conn exposes the underlying handle for migrations and test fixtures.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// WithTx runs fn inside a transaction carried on the context. Nested calls
// join the outer transaction.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, d.conn, fn)
}

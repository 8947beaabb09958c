// Package sql implements dialect.Driver on top of database/sql.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/recgen/recgen/dialect"
)

// Driver is a dialect.Driver implementation for database/sql drivers.
type Driver struct {
	db      *sql.DB
	dialect string
}

// Open opens a connection to the database registered under driverName
// and wraps it with a Driver. The dialect is derived from driverName
// by prefix match, so "sqlite", "sqlite3" and "postgres" all resolve.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(driverName, db), nil
}

// OpenDB wraps an existing *sql.DB with a Driver.
func OpenDB(driverName string, db *sql.DB) *Driver {
	return NewDriver(driverName, db)
}

// NewDriver creates a Driver from a driver name and an open database.
func NewDriver(driverName string, db *sql.DB) *Driver {
	return &Driver{db: db, dialect: dialectOf(driverName)}
}

func dialectOf(driverName string) string {
	switch {
	case strings.HasPrefix(driverName, dialect.Postgres), strings.HasPrefix(driverName, "pgx"):
		return dialect.Postgres
	default:
		return dialect.SQLite
	}
}

// DB returns the underlying *sql.DB.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect implements dialect.Driver.
func (d *Driver) Dialect() string { return d.dialect }

// Close closes the underlying database connection.
func (d *Driver) Close() error { return d.db.Close() }

// ExecContext implements dialect.ExecQuerier.
func (d *Driver) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, Rebind(d.dialect, query), args...)
}

// QueryContext implements dialect.ExecQuerier.
func (d *Driver) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, Rebind(d.dialect, query), args...)
}

// Tx starts a transaction with default isolation.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with the given options.
func (d *Driver) BeginTx(ctx context.Context, opts *sql.TxOptions) (dialect.Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sql: starting transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: d.dialect}, nil
}

// Conn acquires a dedicated connection from the pool. Iterators hold
// one so that their repeated lookups observe a single session.
func (d *Driver) Conn(ctx context.Context) (*Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql: acquiring connection: %w", err)
	}
	return &Conn{conn: conn, dialect: d.dialect}, nil
}

// Tx implements dialect.Tx over *sql.Tx.
type Tx struct {
	tx      *sql.Tx
	dialect string
}

// ExecContext implements dialect.ExecQuerier.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, Rebind(t.dialect, query), args...)
}

// QueryContext implements dialect.ExecQuerier.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, Rebind(t.dialect, query), args...)
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback discards the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Conn is a dedicated pool connection implementing dialect.ExecQuerier.
type Conn struct {
	conn    *sql.Conn
	dialect string
}

// ExecContext implements dialect.ExecQuerier.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, Rebind(c.dialect, query), args...)
}

// QueryContext implements dialect.ExecQuerier.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, Rebind(c.dialect, query), args...)
}

// Close returns the connection to the pool.
func (c *Conn) Close() error { return c.conn.Close() }

// Rebind rewrites "?" placeholders to the positional form required by
// the dialect. Queries are generated, so "?" never appears inside a
// string literal.
func Rebind(d, query string) string {
	if d != dialect.Postgres || !strings.ContainsRune(query, '?') {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

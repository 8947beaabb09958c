// Package dialect provides the database abstraction consumed by
// generated persistence code: dialect name constants and the driver,
// transaction and execution interfaces the runtime operates against.
package dialect

import (
	"context"
	"database/sql"
)

// Supported dialect names.
const (
	// SQLite dialect.
	SQLite = "sqlite"
	// Postgres dialect.
	Postgres = "postgres"
)

// ExecQuerier wraps the standard ExecContext and QueryContext methods.
// It is satisfied by *sql.DB, *sql.Conn, *sql.Tx and the Driver and Tx
// types in dialect/sql, so generated code is indifferent to whether it
// runs inside a transaction.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is the minimal connection surface the runtime needs.
type Driver interface {
	ExecQuerier
	// Dialect returns the dialect name of the driver.
	Dialect() string
	// Tx starts and returns a transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
}

// Tx is a transaction created by a Driver.
type Tx interface {
	ExecQuerier
	// Commit commits the transaction.
	Commit() error
	// Rollback discards the transaction.
	Rollback() error
}

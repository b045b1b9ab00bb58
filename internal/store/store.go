// Package store persists users, members, items and offers in SQLite.
// It enforces no business rules; offer lifecycle preconditions live in
// the exchange package.
package store

import (
	"context"
	"database/sql"
)

// Querier is the subset of database operations the store needs. It is
// satisfied by both *sql.DB and *sql.Tx, so the exchange engine can run
// store functions inside its lifecycle transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

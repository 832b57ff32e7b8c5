// Package dbx defines the minimal database handle shared by repositories.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repositories. Both *sql.DB
// and *sql.Tx satisfy this interface. Every snapshot write is a single
// upsert or delete statement, so repositories rely on statement-level
// atomicity and never need a multi-statement transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

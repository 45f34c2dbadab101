// Package store keeps a history of pipeline runs in PostgreSQL.
//
// History is bookkeeping for the CLI and web transport: the pipeline itself
// never reads or writes it, and a run's outcome does not depend on it.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New wraps a connection for queries.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries runs the history statements against a DBTX.
type Queries struct {
	db DBTX
}

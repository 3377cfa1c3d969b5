package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor hands out the all-or-nothing units of work the transfer
// engine runs inside: row locks, both balance updates, the transfer
// append and the conservation check all live in one pgx transaction,
// so an abort at any step leaves nothing observable.
type Transactor struct {
	pool Pool
}

// NewTransactor wraps the connection pool as a ports.DBTransactor.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction. The caller owns Commit and Rollback.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}

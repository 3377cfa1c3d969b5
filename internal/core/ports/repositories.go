package ports

import (
	"context"

	"mutual-credit-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside transaction blocks and take
// row locks for the duration of the unit of work.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error)
	// ApplyTransfer debits the payer (and bumps its sent counter) and
	// credits the payee (and bumps its received counter) inside tx.
	ApplyTransfer(ctx context.Context, tx pgx.Tx, payerID, payeeID, amount int64) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// SumBalances returns the pool-wide balance sum (always 0 in a
	// consistent ledger).
	SumBalances(ctx context.Context) (int64, error)
	// SumBalancesTx is the in-transaction variant, used to assert the
	// conservation law before committing a transfer.
	SumBalancesTx(ctx context.Context, tx pgx.Tx) (int64, error)
}

// TransferRepository defines persistence operations for transfers.
type TransferRepository interface {
	// Create appends the transfer inside tx and fills in its
	// store-assigned sequential id and commit timestamp.
	Create(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error
	// ListByAccount returns all transfers where the account is payer
	// or payee, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error)
}

// DBTransactor provides the all-or-nothing unit of work the ledger
// engine runs each transfer inside.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

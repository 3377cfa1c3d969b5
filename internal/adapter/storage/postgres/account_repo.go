package postgres

import (
	"context"
	"errors"
	"fmt"

	"mutual-credit-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, name, balance, received, sent, password_hash, created_at, permission`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, name, balance, received, sent, password_hash, created_at, permission)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Name, a.Balance, a.Received, a.Sent,
		a.PasswordHash, a.CreatedAt, a.Permission,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by id (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByName fetches an account by its unique name.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE name = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return a, nil
}

// List returns all accounts ordered by id, oldest first.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Balance, &a.Received, &a.Sent,
			&a.PasswordHash, &a.CreatedAt, &a.Permission,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// GetByIDForUpdate fetches an account by id with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	a, err := scanAccount(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// ApplyTransfer debits the payer and credits the payee inside tx. The
// sent and received counters count committed transfers, not value
// moved: each side advances by exactly one so a single large transfer
// cannot inflate the limit curves that feed on them.
func (r *AccountRepo) ApplyTransfer(ctx context.Context, tx pgx.Tx, payerID, payeeID, amount int64) error {
	debit := `UPDATE accounts SET balance = balance - $1, sent = sent + 1 WHERE id = $2`
	if _, err := tx.Exec(ctx, debit, amount, payerID); err != nil {
		return fmt.Errorf("debit payer: %w", err)
	}

	credit := `UPDATE accounts SET balance = balance + $1, received = received + 1 WHERE id = $2`
	if _, err := tx.Exec(ctx, credit, amount, payeeID); err != nil {
		return fmt.Errorf("credit payee: %w", err)
	}
	return nil
}

// UpdatePasswordHash replaces the account's credential digest.
func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := `UPDATE accounts SET password_hash = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update password hash: account %d not found", id)
	}
	return nil
}

// SumBalances returns the pool-wide balance sum.
func (r *AccountRepo) SumBalances(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return sum, nil
}

// SumBalancesTx returns the balance sum as seen inside tx, including
// its uncommitted writes.
func (r *AccountRepo) SumBalancesTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	var sum int64
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum balances in tx: %w", err)
	}
	return sum, nil
}

// scanAccount scans a single account row, mapping no-rows to nil.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.Name, &a.Balance, &a.Received, &a.Sent,
		&a.PasswordHash, &a.CreatedAt, &a.Permission,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

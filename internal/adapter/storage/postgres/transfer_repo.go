package postgres

import (
	"context"
	"fmt"

	"mutual-credit-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create appends the transfer inside tx. The id and commit timestamp
// are assigned by the database and written back to the struct.
func (r *TransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	query := `INSERT INTO transfers (payer_id, payee_id, amount, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query, t.PayerID, t.PayeeID, t.Amount, t.Message).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// ListByAccount returns all transfers the account took part in, on
// either side, newest first.
func (r *TransferRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	query := `SELECT id, payer_id, payee_id, amount, message, created_at
		FROM transfers
		WHERE payer_id = $1 OR payee_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var t domain.Transfer
		if err := rows.Scan(&t.ID, &t.PayerID, &t.PayeeID, &t.Amount, &t.Message, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

package ports

import (
	"context"
	"time"

	"mutual-credit-ledger/internal/core/domain"
)

// HashService handles credential digests (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles session token operations.
type TokenService interface {
	Generate(accountID int64, name string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed session claims.
type TokenClaims struct {
	AccountID int64
	Name      string
}

// --- Service Ports (Business Logic) ---

// LedgerService is the accounting engine plus its read-only query
// surface.
type LedgerService interface {
	// Transfer atomically moves amount from payer to payee, recording
	// the transfer. On any validation or storage failure nothing is
	// observable.
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	GetAccountByName(ctx context.Context, name string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// ListTransfers returns the account's transfer history, newest first.
	ListTransfers(ctx context.Context, accountID int64) ([]domain.Transfer, error)
	// BalanceSum exposes the pool-wide conservation check: a nonzero
	// sum means the ledger is corrupt.
	BalanceSum(ctx context.Context) (int64, error)
	// Policy returns the limit curve parameters in effect.
	Policy() domain.LimitPolicy
}

// TransferRequest holds validated input for a transfer.
type TransferRequest struct {
	PayerID int64
	PayeeID int64
	Amount  int64
	Message string
}

// AuthService defines account lifecycle and authentication logic.
type AuthService interface {
	// Register creates an account with a time-derived id, zero balance
	// and counters.
	Register(ctx context.Context, name, password string) (*domain.Account, error)
	// Login validates credentials and returns a session token with its
	// expiry.
	Login(ctx context.Context, name, password string) (string, time.Time, error)
	ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error
}

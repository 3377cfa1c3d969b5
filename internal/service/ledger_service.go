package service

import (
	"context"
	"errors"
	"fmt"

	"mutual-credit-ledger/internal/core/domain"
	"mutual-credit-ledger/internal/core/ports"
	"mutual-credit-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accountRepo  ports.AccountRepository
	transferRepo ports.TransferRepository
	transactor   ports.DBTransactor
	policy       domain.LimitPolicy
	minAmount    int64
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	transferRepo ports.TransferRepository,
	transactor ports.DBTransactor,
	policy domain.LimitPolicy,
	minAmount int64,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		transactor:   transactor,
		policy:       policy,
		minAmount:    minAmount,
		log:          log,
	}
}

// Transfer moves amount from payer to payee with pessimistic locking.
// Both accounts are locked for the duration of the transaction, rows
// always taken in ascending id order so concurrent transfers cannot
// deadlock. The pool-wide balance sum is re-checked before commit; a
// nonzero sum aborts the transfer rather than persisting a corrupt
// ledger.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transfer, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	// Cheap rejections before touching the database.
	if req.Amount < s.minAmount {
		return nil, apperror.ErrBelowMinimum(s.minAmount)
	}
	if req.PayerID == req.PayeeID {
		return nil, apperror.ErrSelfTransfer()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payer, payee, err := s.lockAccounts(ctx, dbTx, req.PayerID, req.PayeeID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.ValidateTransfer(payer, payee, req.Amount, s.minAmount); err != nil {
		return nil, mapLedgerError(err)
	}

	if err := s.accountRepo.ApplyTransfer(ctx, dbTx, req.PayerID, req.PayeeID, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("apply transfer: %w", err))
	}

	transfer := &domain.Transfer{
		PayerID: req.PayerID,
		PayeeID: req.PayeeID,
		Amount:  req.Amount,
		Message: req.Message,
	}
	if err := s.transferRepo.Create(ctx, dbTx, transfer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record transfer: %w", err))
	}

	// Conservation check: every debit has a matching credit, so the
	// pool-wide sum must still be zero inside this transaction.
	sum, err := s.accountRepo.SumBalancesTx(ctx, dbTx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum balances: %w", err))
	}
	if sum != 0 {
		s.log.Error().
			Int64("sum", sum).
			Int64("payer_id", req.PayerID).
			Int64("payee_id", req.PayeeID).
			Msg("balance sum nonzero, aborting transfer")
		return nil, apperror.ErrLedgerCorrupt(domain.ErrInvariantViolated)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("transfer_id", transfer.ID).
		Int64("payer_id", req.PayerID).
		Int64("payee_id", req.PayeeID).
		Int64("amount", req.Amount).
		Msg("transfer committed")

	return transfer, nil
}

// lockAccounts loads both parties with FOR UPDATE row locks, lowest id
// first.
func (s *LedgerServiceImpl) lockAccounts(ctx context.Context, tx pgx.Tx, payerID, payeeID int64) (payer, payee *domain.Account, err error) {
	firstID, secondID := payerID, payeeID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accountRepo.GetByIDForUpdate(ctx, tx, firstID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account %d: %w", firstID, err))
	}
	if first == nil {
		return nil, nil, apperror.ErrAccountNotFound(firstID)
	}

	second, err := s.accountRepo.GetByIDForUpdate(ctx, tx, secondID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account %d: %w", secondID, err))
	}
	if second == nil {
		return nil, nil, apperror.ErrAccountNotFound(secondID)
	}

	if first.ID == payerID {
		return first, second, nil
	}
	return second, first, nil
}

// GetAccount returns a single account by id.
func (s *LedgerServiceImpl) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(id)
	}
	return account, nil
}

// GetAccountByName returns a single account by its display name.
func (s *LedgerServiceImpl) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account by name: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNameNotFound(name)
	}
	return account, nil
}

// ListAccounts returns all accounts in the pool.
func (s *LedgerServiceImpl) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// ListTransfers returns the account's transfer history, newest first.
func (s *LedgerServiceImpl) ListTransfers(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(accountID)
	}

	transfers, err := s.transferRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transfers: %w", err))
	}
	return transfers, nil
}

// BalanceSum returns the pool-wide balance sum. Nonzero means the
// ledger is corrupt.
func (s *LedgerServiceImpl) BalanceSum(ctx context.Context) (int64, error) {
	sum, err := s.accountRepo.SumBalances(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum balances: %w", err))
	}
	return sum, nil
}

// Policy returns the limit curve parameters in effect.
func (s *LedgerServiceImpl) Policy() domain.LimitPolicy {
	return s.policy
}

// mapLedgerError translates typed validation errors into API errors
// carrying the violated bound.
func mapLedgerError(err error) error {
	var belowMin *domain.BelowMinimumError
	if errors.As(err, &belowMin) {
		return apperror.ErrBelowMinimum(belowMin.Min)
	}
	var selfTransfer *domain.SelfTransferError
	if errors.As(err, &selfTransfer) {
		return apperror.ErrSelfTransfer()
	}
	var sendLimit *domain.SendLimitError
	if errors.As(err, &sendLimit) {
		return apperror.ErrSendLimitExceeded(sendLimit.Limit)
	}
	var recvLimit *domain.ReceiveLimitError
	if errors.As(err, &recvLimit) {
		return apperror.ErrReceiveLimitExceeded(recvLimit.Limit)
	}
	return apperror.InternalError(err)
}

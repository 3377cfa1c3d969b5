package domain

import (
	"errors"
	"fmt"
)

// Ledger errors are typed so callers can recover the violated bound
// with errors.As and build a precise user-facing message. The ledger
// never logs, retries, or swallows them.

// BelowMinimumError reports an amount under the pool's minimum.
type BelowMinimumError struct {
	Min int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("amount is below the pool minimum of %d", e.Min)
}

// SelfTransferError reports payer and payee being the same account.
type SelfTransferError struct{}

func (e *SelfTransferError) Error() string {
	return "payer and payee are the same account"
}

// SendLimitError reports an amount exceeding the payer's send capacity.
type SendLimitError struct {
	Limit int64
}

func (e *SendLimitError) Error() string {
	return fmt.Sprintf("amount exceeds the payer's send limit of %d", e.Limit)
}

// ReceiveLimitError reports an amount exceeding the payee's receive
// capacity.
type ReceiveLimitError struct {
	Limit int64
}

func (e *ReceiveLimitError) Error() string {
	return fmt.Sprintf("amount exceeds the payee's receive limit of %d", e.Limit)
}

// AccountNotFoundError reports a reference to a missing account.
type AccountNotFoundError struct {
	ID int64
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.ID)
}

// ErrInvariantViolated signals a state the ledger must never reach
// (an unidentifiable binding constraint, or a nonzero pool balance
// sum). It is a programmer-error class: the engine refuses to commit
// rather than guess.
var ErrInvariantViolated = errors.New("ledger invariant violated")

package domain

import "time"

// Account is a member of the credit pool. Balance is signed: a negative
// balance means the account has drawn credit from the pool. The sum of
// all balances in a pool is always exactly zero.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Balance      int64     `json:"balance"`
	Received     uint64    `json:"transfers_received"`
	Sent         uint64    `json:"transfers_sent"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
	Permission   int       `json:"permission"` // Reserved authorization tier, unused by ledger logic
}

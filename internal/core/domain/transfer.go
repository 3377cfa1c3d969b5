package domain

import "time"

// Transfer is an immutable ledger entry recording a committed movement
// of value between two accounts. Its balance and counter effects were
// applied in the same atomic unit that created it; there is no pending
// state.
type Transfer struct {
	ID        int64     `json:"id"`
	PayerID   int64     `json:"payer_id"`
	PayeeID   int64     `json:"payee_id"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

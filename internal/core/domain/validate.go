package domain

// ValidateTransfer checks a proposed transfer against the pool policy.
// The check order is fixed, first failure wins:
//
//  1. amount under the pool minimum
//  2. payer and payee are the same account
//  3. amount over the binding limit (the tighter of the payer's send
//     capacity and the payee's receive capacity, identified before the
//     amount comparison)
//
// It is pure: no I/O, no mutation, safe to call on every render.
func (p LimitPolicy) ValidateTransfer(payer, payee *Account, amount, minAmount int64) error {
	if amount < minAmount {
		return &BelowMinimumError{Min: minAmount}
	}
	if payer.ID == payee.ID {
		return &SelfTransferError{}
	}

	switch kind, bound := p.BindingLimit(payer, payee); kind {
	case LimitSend:
		if amount > bound {
			return &SendLimitError{Limit: bound}
		}
	case LimitReceive:
		if amount > bound {
			return &ReceiveLimitError{Limit: bound}
		}
	default:
		return ErrInvariantViolated
	}
	return nil
}

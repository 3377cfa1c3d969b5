package domain

import "math"

// LimitPolicy parameterises the exposure limit curves. Both curves grow
// sub-linearly with an account's track record so that new accounts
// cannot mint large credit immediately. Limits may be negative and are
// never clamped: a negative limit is a hard ceiling that rejects every
// positive amount.
type LimitPolicy struct {
	ReceiveFactor  float64
	ReceiveBase    int64
	CreditScale    float64
	CreditExponent float64
}

// DefaultLimitPolicy returns the reference curve constants.
func DefaultLimitPolicy() LimitPolicy {
	return LimitPolicy{
		ReceiveFactor:  2500,
		ReceiveBase:    2500,
		CreditScale:    200,
		CreditExponent: 0.65,
	}
}

// ReceiveLimit is the maximum amount the account may still accept:
// floor(sqrt(sent) * ReceiveFactor) + ReceiveBase - balance.
// An account that has sent more back into the pool earns a higher
// ceiling; holding a large positive balance lowers it.
func (p LimitPolicy) ReceiveLimit(a *Account) int64 {
	return int64(math.Sqrt(float64(a.Sent))*p.ReceiveFactor) + p.ReceiveBase - a.Balance
}

// CreditLimit is the credit line the account has earned from its
// history of receiving: floor((received * 2)^CreditExponent * CreditScale).
// Zero history yields a zero credit line.
func (p LimitPolicy) CreditLimit(a *Account) int64 {
	return int64(math.Pow(float64(a.Received)*2, p.CreditExponent) * p.CreditScale)
}

// SendLimit is how much the account can send right now: its earned
// credit line plus whatever surplus balance it holds.
func (p LimitPolicy) SendLimit(a *Account) int64 {
	return p.CreditLimit(a) + a.Balance
}

// LimitKind names which side's constraint binds a proposed transfer.
type LimitKind int

const (
	LimitSend LimitKind = iota
	LimitReceive
)

// BindingLimit identifies the tighter of the payer's send capacity and
// the payee's receive capacity, so a rejection can name the actual
// bottleneck rather than an arbitrary side.
func (p LimitPolicy) BindingLimit(payer, payee *Account) (LimitKind, int64) {
	send := p.SendLimit(payer)
	recv := p.ReceiveLimit(payee)
	if send <= recv {
		return LimitSend, send
	}
	return LimitReceive, recv
}

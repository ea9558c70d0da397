package rewards

import "errors"

// Precondition failures surfaced by the rewards service. Handlers map these
// to HTTP statuses; none of them leave a partial ledger mutation behind.
var (
	ErrInvalidAmount      = errors.New("rewards: point amount must be positive")
	ErrInsufficientPoints = errors.New("rewards: not enough points")
	ErrUnknownReward      = errors.New("rewards: reward not found")
	ErrUnknownVoucher     = errors.New("rewards: voucher not found")
	ErrRewardOutOfStock   = errors.New("rewards: reward out of stock")
	ErrInvalidTransition  = errors.New("rewards: invalid status transition")
)

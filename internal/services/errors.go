package services

import "errors"

// Sentinel errors surfaced by the ledger and workflow services. User-facing
// operations return the first of these and perform no partial mutation; batch
// operations downgrade them to per-item skips.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrInvalidPin          = errors.New("invalid withdrawal pin")
	ErrPinNotSet           = errors.New("withdrawal pin not set")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrAlreadyVerified     = errors.New("user already verified")
)

// Package apperrors defines the standardized error taxonomy shared across
// the signal execution pipeline.
package apperrors

import "errors"

// Exchange and execution errors
var (
	ErrExchangeUnavailable  = errors.New("exchange unavailable")
	ErrAssetNotFound        = errors.New("asset not found in account balance")
	ErrInstrumentNotFound   = errors.New("instrument not found in exchange metadata")
	ErrFilterMissing        = errors.New("instrument filter missing")
	ErrInvalidQuantity      = errors.New("invalid order quantity")
	ErrInvalidSymbol        = errors.New("invalid symbol")
	ErrUnknownAction        = errors.New("unknown signal action")
	ErrReconcileFailed      = errors.New("position reconciliation failed")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrOrderRejected        = errors.New("order rejected")
)

// IsTransient reports whether an error is worth retrying at the exchange-call
// boundary. Validation and business errors are never transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrExchangeUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}

package ledger

import "errors"

var (
	// ErrAmountZero is returned when a transfer moves nothing.
	ErrAmountZero = errors.New("amount zero")
	// ErrBalanceLow is returned when a free or vault balance cannot cover the amount.
	ErrBalanceLow = errors.New("balance low")
	// ErrBalanceZero is returned when an operation needs a non-empty balance.
	ErrBalanceZero = errors.New("balance zero")
	// ErrNoPermission is returned when the caller is not the asset issuer.
	ErrNoPermission = errors.New("no permission")
	// ErrUnknown is returned for an asset id that was never issued.
	ErrUnknown = errors.New("unknown asset")
	// ErrOverflow is returned when a mint would overflow the supply.
	ErrOverflow = errors.New("overflow")
	// ErrUnknownOwnerID is returned for an organization that never had a vault entry.
	ErrUnknownOwnerID = errors.New("unknown owner id")
)

package sdk

import "errors"

var (
	// ErrTxnDone is returned when a committed or discarded txn is used again.
	ErrTxnDone = errors.New("txn already finished")
	// ErrReadOnly is returned by writes on a txn opened with update=false.
	ErrReadOnly = errors.New("txn is read only")
	// ErrInsufficientFunds is the base currency equivalent of a low balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

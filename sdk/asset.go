package sdk

import (
	"math"
	"strconv"
)

// AssetID names a fungible token class issued by the ledger.
type AssetID uint32

// String returns the decimal id for logging or keys in text form.
func (a AssetID) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// Balance is an amount of either a token or the base currency.
type Balance uint64

// String returns the decimal amount for event lines.
func (b Balance) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

// CheckedAdd adds two balances and reports false when the sum does not fit.
func CheckedAdd(a, b Balance) (Balance, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// SaturatingAdd adds two balances and clamps at the max instead of wrapping around.
func SaturatingAdd(a, b Balance) Balance {
	if s, ok := CheckedAdd(a, b); ok {
		return s
	}
	return math.MaxUint64
}

// SaturatingSub subtracts b from a and clamps at zero.
func SaturatingSub(a, b Balance) Balance {
	if b > a {
		return 0
	}
	return a - b
}

// MinBalance returns the smaller of both values.
func MinBalance(a, b Balance) Balance {
	if a < b {
		return a
	}
	return b
}

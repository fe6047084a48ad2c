package sdk

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Currency is the base currency ledger the vault moves value through.
type Currency interface {
	FreeBalance(who AccountID) (Balance, error)
	Transfer(from, to AccountID, amount Balance) error
}

// kCurrencyBalance keeps native balances apart from the contract prefixes (0x10 and up).
const kCurrencyBalance byte = 0x01

// KVCurrency keeps base currency balances as decimal strings next to the contract state,
// so currency moves commit or roll back together with everything else of the call.
type KVCurrency struct {
	st State
}

// NewKVCurrency binds the ledger to a txn.
func NewKVCurrency(st State) *KVCurrency {
	return &KVCurrency{st: st}
}

func currencyKey(who AccountID) string {
	buf := make([]byte, 0, 1+len(who))
	buf = append(buf, kCurrencyBalance)
	buf = append(buf, who...)
	return string(buf)
}

// FreeBalance reads the balance, unknown accounts hold zero.
func (c *KVCurrency) FreeBalance(who AccountID) (Balance, error) {
	raw, ok, err := c.st.Get(currencyKey(who))
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "currency balance of %s", who)
	}
	return Balance(n), nil
}

func (c *KVCurrency) setBalance(who AccountID, b Balance) error {
	if b == 0 {
		return c.st.Delete(currencyKey(who))
	}
	return c.st.Set(currencyKey(who), []byte(strconv.FormatUint(uint64(b), 10)))
}

// Endow credits fresh funds to an account (genesis or host faucet), saturating at the max.
func (c *KVCurrency) Endow(who AccountID, amount Balance) error {
	cur, err := c.FreeBalance(who)
	if err != nil {
		return err
	}
	return c.setBalance(who, SaturatingAdd(cur, amount))
}

// Transfer moves amount from one account to another. Same account is a no-op.
func (c *KVCurrency) Transfer(from, to AccountID, amount Balance) error {
	if from == to || amount == 0 {
		return nil
	}
	fb, err := c.FreeBalance(from)
	if err != nil {
		return err
	}
	if fb < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, from, fb, amount)
	}
	tb, err := c.FreeBalance(to)
	if err != nil {
		return err
	}
	if err := c.setBalance(from, fb-amount); err != nil {
		return err
	}
	return c.setBalance(to, SaturatingAdd(tb, amount))
}

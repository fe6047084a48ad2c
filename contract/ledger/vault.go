package ledger

import (
	"errors"
	"fmt"
	"strconv"

	"okinoko_gov/sdk"
)

// Vault books per organization balances held inside one shared custodial account.
// A missing entry means the organization was never funded, which is not the same as zero.
type Vault struct {
	st      sdk.State
	cur     sdk.Currency
	sink    sdk.EventSink
	custody sdk.AccountID
}

// NewVault binds the vault to a call. custody is the single pot account all funds sit in.
func NewVault(st sdk.State, cur sdk.Currency, sink sdk.EventSink, custody sdk.AccountID) *Vault {
	return &Vault{st: st, cur: cur, sink: sink, custody: custody}
}

// Custody returns the pot account.
func (v *Vault) Custody() sdk.AccountID {
	return v.custody
}

func (v *Vault) readAmount(key string) (sdk.Balance, bool, error) {
	raw, ok, err := v.st.Get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("vault entry %x: %w", key, err)
	}
	return sdk.Balance(n), true, nil
}

func (v *Vault) writeAmount(key string, amount sdk.Balance) error {
	return v.st.Set(key, []byte(strconv.FormatUint(uint64(amount), 10)))
}

// BalanceOf returns the organization's booked balance or ErrUnknownOwnerID.
func (v *Vault) BalanceOf(org sdk.AccountID) (sdk.Balance, error) {
	bal, ok, err := v.readAmount(vaultBalanceKey(org))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOwnerID, org)
	}
	return bal, nil
}

// LockedOf returns how much who has staked against org, zero when nothing is locked.
func (v *Vault) LockedOf(org, who sdk.AccountID) (sdk.Balance, error) {
	bal, _, err := v.readAmount(vaultLockedKey(org, who))
	return bal, err
}

// Deposit moves value from payer into the pot and books it for org, creating the entry if needed.
func (v *Vault) Deposit(org, payer sdk.AccountID, value sdk.Balance) error {
	free, err := v.cur.FreeBalance(payer)
	if err != nil {
		return err
	}
	if free < value {
		return fmt.Errorf("%w: deposit %d, free %d", ErrBalanceLow, value, free)
	}
	if err := v.transfer(payer, v.custody, value); err != nil {
		return err
	}
	bal, _, err := v.readAmount(vaultBalanceKey(org))
	if err != nil {
		return err
	}
	if err := v.writeAmount(vaultBalanceKey(org), sdk.SaturatingAdd(bal, value)); err != nil {
		return err
	}
	emitVaultEvent(v.sink, EventVaultDeposit, org, payer, value)
	return nil
}

// Spend pays value out of org's booking to `to`. The entry stays, even when it drops to zero.
func (v *Vault) Spend(org, to sdk.AccountID, value sdk.Balance) error {
	bal, err := v.BalanceOf(org)
	if err != nil {
		return err
	}
	if bal < value {
		return fmt.Errorf("%w: spend %d, vault %d", ErrBalanceLow, value, bal)
	}
	if err := v.transfer(v.custody, to, value); err != nil {
		return err
	}
	if err := v.writeAmount(vaultBalanceKey(org), bal-value); err != nil {
		return err
	}
	emitVaultEvent(v.sink, EventVaultSpend, org, to, value)
	return nil
}

// LockBalance stakes value of who's free currency against org (the proposal deposit).
// The organization must have a vault entry, its booked balance is not touched.
func (v *Vault) LockBalance(org, who sdk.AccountID, value sdk.Balance) error {
	if _, err := v.BalanceOf(org); err != nil {
		return err
	}
	free, err := v.cur.FreeBalance(who)
	if err != nil {
		return err
	}
	if free < value {
		return fmt.Errorf("%w: stake %d, free %d", ErrBalanceLow, value, free)
	}
	if err := v.transfer(who, v.custody, value); err != nil {
		return err
	}
	key := vaultLockedKey(org, who)
	locked, _, err := v.readAmount(key)
	if err != nil {
		return err
	}
	if err := v.writeAmount(key, sdk.SaturatingAdd(locked, value)); err != nil {
		return err
	}
	emitVaultEvent(v.sink, EventVaultLocked, org, who, value)
	return nil
}

// UnlockBalance returns up to value of who's stake and reports the part that was not staked.
func (v *Vault) UnlockBalance(org, who sdk.AccountID, value sdk.Balance) (sdk.Balance, error) {
	key := vaultLockedKey(org, who)
	locked, _, err := v.readAmount(key)
	if err != nil {
		return value, err
	}
	moved := sdk.MinBalance(value, locked)
	if err := v.transfer(v.custody, who, moved); err != nil {
		return value, err
	}
	if locked == moved {
		err = v.st.Delete(key)
	} else {
		err = v.writeAmount(key, locked-moved)
	}
	if err != nil {
		return value, err
	}
	emitVaultEvent(v.sink, EventVaultUnlocked, org, who, moved)
	return value - moved, nil
}

// transfer maps the currency's insufficient funds onto the ledger error.
func (v *Vault) transfer(from, to sdk.AccountID, value sdk.Balance) error {
	err := v.cur.Transfer(from, to, value)
	if errors.Is(err, sdk.ErrInsufficientFunds) {
		return fmt.Errorf("%w: %v", ErrBalanceLow, err)
	}
	return err
}

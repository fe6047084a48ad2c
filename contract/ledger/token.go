package ledger

import (
	"errors"
	"fmt"
	"math"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// Tokens is the fungible token ledger: per (asset, account) free/frozen balances plus issuance.
// Frozen only moves through Lock and Unlock.
type Tokens struct {
	st   sdk.State
	sink sdk.EventSink
}

// NewTokens binds the ledger to a call's state and event buffer.
func NewTokens(st sdk.State, sink sdk.EventSink) *Tokens {
	return &Tokens{st: st, sink: sink}
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Account returns the balance record, unknown pairs read as zero.
func (t *Tokens) Account(asset sdk.AssetID, who sdk.AccountID) (dao.AssetAccount, error) {
	var acc dao.AssetAccount
	_, err := dao.Load(t.st, assetAccountKey(asset, who), &acc)
	return acc, err
}

// FreeBalance is the spendable part.
func (t *Tokens) FreeBalance(asset sdk.AssetID, who sdk.AccountID) (sdk.Balance, error) {
	acc, err := t.Account(asset, who)
	return acc.Free, err
}

// TotalBalance is free plus frozen.
func (t *Tokens) TotalBalance(asset sdk.AssetID, who sdk.AccountID) (sdk.Balance, error) {
	acc, err := t.Account(asset, who)
	return acc.Total(), err
}

// Issuance returns issuer and supply, ErrUnknown for ids never created.
func (t *Tokens) Issuance(asset sdk.AssetID) (dao.AssetIssuance, error) {
	var iss dao.AssetIssuance
	ok, err := dao.Load(t.st, assetIssuanceKey(asset), &iss)
	if err != nil {
		return iss, err
	}
	if !ok {
		return iss, fmt.Errorf("%w: %d", ErrUnknown, asset)
	}
	return iss, nil
}

// TotalSupply reads the supply and treats unknown assets as zero, like a plain query would.
func (t *Tokens) TotalSupply(asset sdk.AssetID) (sdk.Balance, error) {
	iss, err := t.Issuance(asset)
	if err != nil {
		if errors.Is(err, ErrUnknown) {
			return 0, nil
		}
		return 0, err
	}
	return iss.Supply, nil
}

// NextAssetID is the id Create will hand out next.
func (t *Tokens) NextAssetID() (sdk.AssetID, error) {
	n, err := sdk.GetCount(t.st, nextAssetKey)
	return sdk.AssetID(n), err
}

func (t *Tokens) saveAccount(asset sdk.AssetID, who sdk.AccountID, acc dao.AssetAccount) error {
	key := assetAccountKey(asset, who)
	if acc.IsZero() {
		return t.st.Delete(key)
	}
	return dao.Save(t.st, key, acc)
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Create issues a new asset with the whole supply free on owner, who also becomes the issuer.
func (t *Tokens) Create(owner sdk.AccountID, total sdk.Balance) (sdk.AssetID, error) {
	next, err := sdk.GetCount(t.st, nextAssetKey)
	if err != nil {
		return 0, err
	}
	if next > math.MaxUint32 {
		return 0, fmt.Errorf("%w: asset ids exhausted", ErrOverflow)
	}
	id := sdk.AssetID(next)
	if err := sdk.SetCount(t.st, nextAssetKey, next+1); err != nil {
		return 0, err
	}
	if err := dao.Save(t.st, assetIssuanceKey(id), dao.AssetIssuance{Issuer: owner, Supply: total}); err != nil {
		return 0, err
	}
	if err := t.saveAccount(id, owner, dao.AssetAccount{Free: total}); err != nil {
		return 0, err
	}
	emitAssetEvent(t.sink, EventIssued, id, owner, total)
	return id, nil
}

// Mint credits amount to the issuer's free balance. Supply growth is checked, the credit saturates.
func (t *Tokens) Mint(asset sdk.AssetID, issuer sdk.AccountID, amount sdk.Balance) error {
	iss, err := t.Issuance(asset)
	if err != nil {
		return err
	}
	if iss.Issuer != issuer {
		return fmt.Errorf("%w: %s is not the issuer of %d", ErrNoPermission, issuer, asset)
	}
	supply, ok := sdk.CheckedAdd(iss.Supply, amount)
	if !ok {
		return fmt.Errorf("%w: minting %d on top of %d", ErrOverflow, amount, iss.Supply)
	}
	acc, err := t.Account(asset, issuer)
	if err != nil {
		return err
	}
	acc.Free = sdk.SaturatingAdd(acc.Free, amount)
	iss.Supply = supply
	if err := dao.Save(t.st, assetIssuanceKey(asset), iss); err != nil {
		return err
	}
	if err := t.saveAccount(asset, issuer, acc); err != nil {
		return err
	}
	emitAssetEvent(t.sink, EventMinted, asset, issuer, amount)
	return nil
}

// Burn destroys amount of the issuer's free balance.
func (t *Tokens) Burn(asset sdk.AssetID, issuer sdk.AccountID, amount sdk.Balance) error {
	iss, err := t.Issuance(asset)
	if err != nil {
		return err
	}
	if iss.Issuer != issuer {
		return fmt.Errorf("%w: %s is not the issuer of %d", ErrNoPermission, issuer, asset)
	}
	acc, err := t.Account(asset, issuer)
	if err != nil {
		return err
	}
	if acc.Free < amount {
		return fmt.Errorf("%w: burn %d, free %d", ErrBalanceLow, amount, acc.Free)
	}
	acc.Free -= amount
	iss.Supply = sdk.SaturatingSub(iss.Supply, amount)
	if err := t.saveAccount(asset, issuer, acc); err != nil {
		return err
	}
	if err := dao.Save(t.st, assetIssuanceKey(asset), iss); err != nil {
		return err
	}
	emitAssetEvent(t.sink, EventBurned, asset, issuer, amount)
	return nil
}

// Transfer moves free balance. Zero amounts fail, moving to yourself succeeds without touching
// anything, the debit is checked while the credit saturates.
func (t *Tokens) Transfer(asset sdk.AssetID, from, to sdk.AccountID, amount sdk.Balance) error {
	if amount == 0 {
		return ErrAmountZero
	}
	if from == to {
		emitTransferredEvent(t.sink, asset, from, to, amount)
		return nil
	}
	src, err := t.Account(asset, from)
	if err != nil {
		return err
	}
	if src.Free < amount {
		return fmt.Errorf("%w: transfer %d, free %d", ErrBalanceLow, amount, src.Free)
	}
	dst, err := t.Account(asset, to)
	if err != nil {
		return err
	}
	src.Free -= amount
	dst.Free = sdk.SaturatingAdd(dst.Free, amount)
	if err := t.saveAccount(asset, from, src); err != nil {
		return err
	}
	if err := t.saveAccount(asset, to, dst); err != nil {
		return err
	}
	emitTransferredEvent(t.sink, asset, from, to, amount)
	return nil
}

// Lock moves value from free to frozen.
func (t *Tokens) Lock(asset sdk.AssetID, who sdk.AccountID, value sdk.Balance) error {
	acc, err := t.Account(asset, who)
	if err != nil {
		return err
	}
	if acc.Free < value {
		return fmt.Errorf("%w: lock %d, free %d", ErrBalanceLow, value, acc.Free)
	}
	acc.Free -= value
	acc.Frozen = sdk.SaturatingAdd(acc.Frozen, value)
	if err := t.saveAccount(asset, who, acc); err != nil {
		return err
	}
	emitAssetEvent(t.sink, EventLocked, asset, who, value)
	return nil
}

// Unlock releases whatever is still frozen up to value and returns the part it could not
// release. It only fails on storage errors.
func (t *Tokens) Unlock(asset sdk.AssetID, who sdk.AccountID, value sdk.Balance) (sdk.Balance, error) {
	acc, err := t.Account(asset, who)
	if err != nil {
		return value, err
	}
	moved := sdk.MinBalance(value, acc.Frozen)
	acc.Frozen -= moved
	acc.Free = sdk.SaturatingAdd(acc.Free, moved)
	if err := t.saveAccount(asset, who, acc); err != nil {
		return value, err
	}
	emitAssetEvent(t.sink, EventUnlocked, asset, who, moved)
	return value - moved, nil
}

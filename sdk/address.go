package sdk

import (
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// AccountID identifies a holder of balances. Human accounts are whatever the host
// authenticated (like "alice"), module accounts are 0x-prefixed hex of 32 bytes.
type AccountID string

// String returns the literal representation of the account.
func (a AccountID) String() string {
	return string(a)
}

// IsModule reports whether the account was derived from a module id rather than a signer.
// Example payload: sdk.AccountID("0x6d6f646c...").IsModule()
func (a AccountID) IsModule() bool {
	return strings.HasPrefix(a.String(), "0x"+hex.EncodeToString(accountPrefix))
}

const accountLen = 32

var accountPrefix = []byte("modl")

// ModuleID is the fixed 8 byte system constant module accounts are derived from.
type ModuleID [8]byte

// ParseModuleID turns config text like "py/asset" into a module id. It has to be exactly 8 bytes.
func ParseModuleID(s string) (ModuleID, error) {
	var m ModuleID
	if len(s) != len(m) {
		return m, fmt.Errorf("module id %q must be %d bytes, got %d", s, len(m), len(s))
	}
	copy(m[:], s)
	return m, nil
}

// String prints the module id as plain text for logs.
func (m ModuleID) String() string {
	return string(m[:])
}

// Account derives the single account owned by the module: "modl" ++ id padded with zeros.
func (m ModuleID) Account() AccountID {
	buf := make([]byte, 0, accountLen)
	buf = append(buf, accountPrefix...)
	buf = append(buf, m[:]...)
	return encodeAccount(buf)
}

// SubAccount derives the n-th account under the module: "modl" ++ id ++ LE32(n) padded with zeros.
// The index bytes sit at a fixed offset so distinct indexes never collide.
func (m ModuleID) SubAccount(n uint32) AccountID {
	buf := make([]byte, 0, accountLen)
	buf = append(buf, accountPrefix...)
	buf = append(buf, m[:]...)
	buf = append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return encodeAccount(buf)
}

func encodeAccount(raw []byte) AccountID {
	var full [accountLen]byte
	copy(full[:], raw)
	return AccountID("0x" + hex.EncodeToString(full[:]))
}

// Deriver memoises sub account derivation for one module, hex encoding is not free and
// organization ids get derived on every call.
type Deriver struct {
	module ModuleID
	cache  *lru.Cache[uint32, AccountID]
}

// NewDeriver builds a deriver with an LRU of the given size. A size of zero disables caching.
func NewDeriver(module ModuleID, size int) (*Deriver, error) {
	d := &Deriver{module: module}
	if size > 0 {
		c, err := lru.New[uint32, AccountID](size)
		if err != nil {
			return nil, err
		}
		d.cache = c
	}
	return d, nil
}

// Module returns the module id the deriver works for.
func (d *Deriver) Module() ModuleID {
	return d.module
}

// SubAccount is the cached version of ModuleID.SubAccount.
func (d *Deriver) SubAccount(n uint32) AccountID {
	if d.cache == nil {
		return d.module.SubAccount(n)
	}
	if id, ok := d.cache.Get(n); ok {
		return id
	}
	id := d.module.SubAccount(n)
	d.cache.Add(n, id)
	return id
}

package contract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/CosmWasm/tinyjson"

	"okinoko_gov/contract/dao"
	"okinoko_gov/contract/ledger"
	"okinoko_gov/sdk"
)

// built-in action tags
const (
	ActionVaultTransfer    = "vault_transfer"
	ActionCurrencyTransfer = "currency_transfer"
	ActionRemark           = "remark"
	ActionMint             = "mint"
)

// Handler runs one decoded action. c acts as the organization: c.Env.Caller is the org id.
type Handler func(c *Call, payload []byte) error

// Executor maps action tags onto handlers. It is built once per runtime and only read while
// calls are applied.
type Executor struct {
	handlers map[string]Handler
}

// NewExecutor returns an executor with the built-in actions registered.
func NewExecutor() *Executor {
	e := &Executor{handlers: make(map[string]Handler)}
	e.Register(ActionVaultTransfer, vaultTransfer)
	e.Register(ActionCurrencyTransfer, currencyTransfer)
	e.Register(ActionRemark, remark)
	e.Register(ActionMint, mintOrgToken)
	return e
}

// Register adds or replaces the handler for tag.
func (e *Executor) Register(tag string, h Handler) {
	e.handlers[tag] = h
}

// Tags lists the registered tags in sorted order.
func (e *Executor) Tags() []string {
	tags := make([]string, 0, len(e.handlers))
	for t := range e.handlers {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// execute decodes action and runs it as org inside a savepoint of c. actionErr is the action's
// own failure, err only reports that the savepoint could not be folded back.
func (e *Executor) execute(c *Call, org sdk.AccountID, action []byte) (actionErr, err error) {
	a, decErr := dao.DecodeAction(action)
	if decErr != nil {
		return fmt.Errorf("%w: %v", ErrProposalDecodeFailed, decErr), nil
	}
	h, ok := e.handlers[a.Tag]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Tag), nil
	}
	return c.savepoint(c.Env.WithCaller(org), func(inner *Call) error {
		return h(inner, a.Payload)
	})
}

// decodeArgs maps payload decode failures onto ErrProposalDecodeFailed.
func decodeArgs(payload []byte, v tinyjson.Unmarshaler) error {
	if err := dao.Decode(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrProposalDecodeFailed, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Built-in actions
// -----------------------------------------------------------------------------

// vaultTransfer pays out of the organization's vault.
func vaultTransfer(c *Call, payload []byte) error {
	var args dao.TransferArgs
	if err := decodeArgs(payload, &args); err != nil {
		return err
	}
	return c.Vault.Spend(c.Env.Caller, args.To, args.Amount)
}

// currencyTransfer moves base currency held by the organization account itself.
func currencyTransfer(c *Call, payload []byte) error {
	var args dao.TransferArgs
	if err := decodeArgs(payload, &args); err != nil {
		return err
	}
	err := c.Currency.Transfer(c.Env.Caller, args.To, args.Amount)
	if errors.Is(err, sdk.ErrInsufficientFunds) {
		return fmt.Errorf("%w: %v", ledger.ErrBalanceLow, err)
	}
	return err
}

// remark only leaves an event behind.
func remark(c *Call, payload []byte) error {
	var args dao.RemarkArgs
	if err := decodeArgs(payload, &args); err != nil {
		return err
	}
	emitRemarkEvent(c.events, c.Env.Caller, args.Text)
	return nil
}

// mintOrgToken mints the organization's own voting token with the organization as issuer.
func mintOrgToken(c *Call, payload []byte) error {
	var args dao.MintArgs
	if err := decodeArgs(payload, &args); err != nil {
		return err
	}
	o, err := c.Orgs.Get(c.Env.Caller)
	if err != nil {
		return err
	}
	return c.Tokens.Mint(o.TokenID, c.Env.Caller, args.Amount)
}

package contract

import (
	"okinoko_gov/contract/ledger"
	"okinoko_gov/sdk"
)

// Call is scoped to the currently executing host call. Every component below shares the same
// txn and event buffer, so a rollback of the call takes all of them back at once.
type Call struct {
	Env sdk.Env

	rt     *Runtime
	st     sdk.State
	events *sdk.EventBuffer

	Currency  *sdk.KVCurrency
	Tokens    *ledger.Tokens
	Vault     *ledger.Vault
	Orgs      *Registry
	Proposals *ProposalEngine
	Voting    *VotingEngine
}

func newCall(rt *Runtime, env sdk.Env, st sdk.State, events *sdk.EventBuffer) *Call {
	c := &Call{Env: env, rt: rt, st: st, events: events}
	c.Currency = sdk.NewKVCurrency(st)
	c.Tokens = ledger.NewTokens(st, events)
	c.Vault = ledger.NewVault(st, c.Currency, events, rt.custody)
	c.Orgs = &Registry{c: c}
	c.Proposals = &ProposalEngine{c: c}
	c.Voting = &VotingEngine{c: c}
	return c
}

// Events exposes what the call emitted so far.
func (c *Call) Events() []sdk.Event {
	return c.events.Events()
}

// savepoint runs fn against a nested overlay acting as env. When fn fails its writes and events
// are dropped and the failure comes back as fnErr while the outer call keeps going. err is only
// set when the overlay could not be folded into the call's state.
func (c *Call) savepoint(env sdk.Env, fn func(inner *Call) error) (fnErr, err error) {
	ov := sdk.NewOverlay(c.st)
	mark := c.events.Mark()
	inner := newCall(c.rt, env, ov, c.events)
	if fnErr := fn(inner); fnErr != nil {
		ov.Discard()
		c.events.Rollback(mark)
		return fnErr, nil
	}
	return nil, ov.Commit()
}

// Emit appends e to the call's events. Registered handlers use it for their own notifications.
func (c *Call) Emit(e sdk.Event) {
	c.events.Emit(e)
}

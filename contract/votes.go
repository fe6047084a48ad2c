package contract

import (
	"fmt"

	"go.uber.org/zap"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// -----------------------------------------------------------------------------
// Voting
// -----------------------------------------------------------------------------

// Outcome is where a close attempt left the proposal.
type Outcome uint8

const (
	// OutcomeOpen means neither passed nor expired, nothing happened.
	OutcomeOpen Outcome = iota
	// OutcomePassed means the action ran (or failed into an event) and the proposal is gone.
	OutcomePassed
	// OutcomeRefused means the proposal expired without passing and is gone.
	OutcomeRefused
)

// String prints the outcome as lower-case text for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeRefused:
		return "refused"
	default:
		return "open"
	}
}

// VotingEngine drives votes and closes. It holds no state of its own.
type VotingEngine struct {
	c *Call
}

// Vote locks amount of the organization token from voter and counts it toward the latest
// direction, then tries to close. Voting after expiry closes the proposal and fails.
func (v *VotingEngine) Vote(org sdk.AccountID, pid dao.ProposalID, voter sdk.AccountID, amount sdk.Balance, approve bool) error {
	member, err := v.c.Orgs.IsMember(org, voter)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: %s in %s", ErrNotMemberInOrg, voter, org)
	}
	o, err := v.c.Orgs.Get(org)
	if err != nil {
		return err
	}
	prop, err := v.c.Proposals.Get(pid)
	if err != nil {
		return err
	}
	if prop.Org != org {
		return fmt.Errorf("%w: %s belongs to %s", ErrProposalNotFound, pid, prop.Org)
	}
	if prop.Detail.IsExpired(v.c.Env.Height) {
		if _, err := v.TryClose(org, pid); err != nil {
			return err
		}
		return keepChanges{fmt.Errorf("%w: %s expired at %d", ErrProposalExpired, pid, prop.Detail.ExpiresAt)}
	}

	if err := v.c.Tokens.Lock(o.TokenID, voter, amount); err != nil {
		return err
	}
	prop.Detail.Vote(voter, amount, approve)
	if err := v.c.Proposals.save(pid, prop); err != nil {
		return err
	}
	emitVoteCasted(v.c.events, org, pid, voter, amount, approve)

	_, err = v.TryClose(org, pid)
	return err
}

// TryClose closes the proposal when it passed or expired. A pass before expiry executes the
// action as the organization; either way every voter lock and the creator stake are released.
func (v *VotingEngine) TryClose(org sdk.AccountID, pid dao.ProposalID) (Outcome, error) {
	prop, err := v.c.Proposals.Get(pid)
	if err != nil {
		return OutcomeOpen, err
	}
	if prop.Org != org {
		return OutcomeOpen, fmt.Errorf("%w: %s belongs to %s", ErrProposalNotFound, pid, prop.Org)
	}
	o, err := v.c.Orgs.Get(org)
	if err != nil {
		return OutcomeOpen, err
	}
	total, err := v.c.Tokens.TotalSupply(o.TokenID)
	if err != nil {
		return OutcomeOpen, err
	}

	expired := prop.Detail.IsExpired(v.c.Env.Height)
	passed := prop.Detail.Pass(total)
	if !passed && !expired {
		return OutcomeOpen, nil
	}

	if passed && !expired {
		if err := v.execute(org, pid, prop.Action); err != nil {
			return OutcomeOpen, err
		}
	}
	if err := v.release(org, prop); err != nil {
		return OutcomeOpen, err
	}
	if err := v.c.Proposals.Remove(pid); err != nil {
		return OutcomeOpen, err
	}

	// a pass that comes in after expiry is not executed, so it reads as refused
	if expired {
		emitProposalClosedEvent(v.c.events, EventProposalRefused, pid)
		return OutcomeRefused, nil
	}
	emitProposalClosedEvent(v.c.events, EventProposalPassed, pid)
	return OutcomePassed, nil
}

// execute hands the action to the executor. Only storage failures come back as errors, the
// action's own failure is reported in the finalized event.
func (v *VotingEngine) execute(org sdk.AccountID, pid dao.ProposalID, action []byte) error {
	actionErr, err := v.c.rt.executor.execute(v.c, org, action)
	if err != nil {
		return err
	}
	if actionErr != nil {
		v.c.rt.log.Warn("proposal action failed",
			zap.String("org", org.String()),
			zap.Stringer("proposal", pid),
			zap.Error(actionErr),
		)
	}
	emitProposalFinalizedEvent(v.c.events, pid, actionErr)
	return nil
}

// release unlocks every voter's weight and returns the creator stake, both best effort.
func (v *VotingEngine) release(org sdk.AccountID, prop *dao.Proposal) error {
	o, err := v.c.Orgs.Get(org)
	if err != nil {
		return err
	}
	for _, vote := range prop.Detail.Votes {
		if _, err := v.c.Tokens.Unlock(o.TokenID, vote.Voter, vote.Amount); err != nil {
			return err
		}
	}
	_, err = v.c.Vault.UnlockBalance(org, prop.Detail.Creator, v.c.rt.stake)
	return err
}

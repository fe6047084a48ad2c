package contract_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gov/contract"
	"okinoko_gov/contract/dao"
	"okinoko_gov/contract/ledger"
	"okinoko_gov/sdk"
)

// ===================================================================
// End to end
// ===================================================================

// TestVaultTransferProposalPasses runs the whole flow: fund, propose, vote, execute, release.
func TestVaultTransferProposalPasses(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	pid := h.propose(org, alice, transferAction(t, contract.ActionVaultTransfer, receiver, 10), defaultRule, 1, 5)
	h.rec.Reset()

	require.NoError(t, h.rt.Vote(at(alice, 3), org, pid, 80, true))

	assert.Equal(t, sdk.Balance(190), h.vault(org))
	assert.Equal(t, sdk.Balance(10), h.currency(receiver))
	assert.Equal(t, dao.AssetAccount{Free: 100}, h.tokenAccount(org, alice))
	assert.Equal(t, sdk.Balance(1000-200), h.currency(alice))
	assert.Equal(t, sdk.Balance(190), h.currency(h.rt.CustodyAccount()))
	assert.Zero(t, h.proposalCount())

	_, err := h.rt.Proposal(pid)
	assert.ErrorIs(t, err, contract.ErrProposalNotFound)
	open, err := h.rt.OpenProposals(org)
	require.NoError(t, err)
	assert.Empty(t, open)

	assert.Equal(t, []string{
		ledger.EventLocked,
		contract.EventVoteCast,
		ledger.EventVaultSpend,
		contract.EventProposalFinalized,
		ledger.EventUnlocked,
		ledger.EventVaultUnlocked,
		contract.EventProposalPassed,
	}, h.rec.Kinds())
	pf := h.rec.Filter(contract.EventProposalFinalized)[0]
	assert.Equal(t, "true", pf.Get("ok"))
	assert.Empty(t, pf.Get("err"))

	// a closed proposal cannot be voted on again
	err = h.rt.Vote(at(alice, 3), org, pid, 1, true)
	assert.ErrorIs(t, err, contract.ErrProposalNotFound)
}

// TestProposalExpiresWithoutQuorum checks the lazy expiry path through a late vote.
func TestProposalExpiresWithoutQuorum(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	pid := h.propose(org, alice, transferAction(t, contract.ActionVaultTransfer, receiver, 10), defaultRule, 1, 5)

	// still open at the expiry height itself
	outcome, err := h.rt.Close(at(bob, 6), org, pid)
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeOpen, outcome)
	assert.Equal(t, uint64(1), h.proposalCount())

	h.rec.Reset()
	err = h.rt.Vote(at(alice, 7), org, pid, 80, true)
	require.ErrorIs(t, err, contract.ErrProposalExpired)
	assert.Equal(t, contract.ClassExpired, contract.ClassOf(err))

	// the refusal committed even though the vote failed
	assert.Zero(t, h.proposalCount())
	assert.Equal(t, sdk.Balance(200), h.vault(org))
	assert.Zero(t, h.currency(receiver))
	assert.Equal(t, dao.AssetAccount{Free: 100}, h.tokenAccount(org, alice))
	assert.Equal(t, sdk.Balance(800), h.currency(alice))
	assert.Equal(t, []string{ledger.EventVaultUnlocked, contract.EventProposalRefused}, h.rec.Kinds())
}

// TestCloseAfterExpiryReleasesVotes checks an explicit close unlocks everyone who voted.
func TestCloseAfterExpiryReleasesVotes(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	h.addMember(org, alice, bob, 40)
	pid := h.propose(org, alice, mustAction(t, contract.ActionRemark, dao.RemarkArgs{Text: "x"}), defaultRule, 1, 5)

	require.NoError(t, h.rt.Vote(at(alice, 2), org, pid, 30, true))
	require.NoError(t, h.rt.Vote(at(bob, 2), org, pid, 4, false))
	assert.Equal(t, dao.AssetAccount{Free: 30, Frozen: 30}, h.tokenAccount(org, alice))

	outcome, err := h.rt.Close(at(outsider, 9), org, pid)
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeRefused, outcome)
	assert.Equal(t, dao.AssetAccount{Free: 60}, h.tokenAccount(org, alice))
	assert.Equal(t, dao.AssetAccount{Free: 40}, h.tokenAccount(org, bob))
	assert.Empty(t, h.rec.Filter(contract.EventRemark))

	_, err = h.rt.Close(at(outsider, 9), org, pid)
	assert.ErrorIs(t, err, contract.ErrProposalNotFound)
}

// ===================================================================
// Five members
// ===================================================================

// fiveMembers seats bob, carol, dave and erin with 20 tokens each next to alice's remaining 20.
func fiveMembers(h *harness) sdk.AccountID {
	h.t.Helper()
	org := fundedOrg(h, defaultRule)
	for _, m := range []sdk.AccountID{bob, carol, dave, erin} {
		h.addMember(org, alice, m, 20)
	}
	return org
}

// TestFiveMemberProposalPasses checks weights add up across voters until the threshold is crossed.
func TestFiveMemberProposalPasses(t *testing.T) {
	h := newHarness(t)
	org := fiveMembers(h)
	pid := h.propose(org, alice, transferAction(t, contract.ActionVaultTransfer, receiver, 30), defaultRule, 1, 10)

	votes := []struct {
		who    sdk.AccountID
		amount sdk.Balance
	}{{alice, 20}, {bob, 3}, {carol, 8}, {dave, 20}}
	for _, v := range votes {
		require.NoError(t, h.rt.Vote(at(v.who, 2), org, pid, v.amount, true))
		assert.Equal(t, uint64(1), h.proposalCount(), "still below the threshold")
	}
	require.NoError(t, h.rt.Vote(at(erin, 2), org, pid, 20, true))

	assert.Zero(t, h.proposalCount())
	assert.Equal(t, sdk.Balance(170), h.vault(org))
	assert.Equal(t, sdk.Balance(30), h.currency(receiver))
	for _, m := range []sdk.AccountID{alice, bob, carol, dave, erin} {
		assert.Equal(t, dao.AssetAccount{Free: 20}, h.tokenAccount(org, m), m.String())
	}
}

// TestFiveMemberDissentBlocks checks dissent above the cap keeps a proposal open whatever the support.
func TestFiveMemberDissentBlocks(t *testing.T) {
	h := newHarness(t)
	org := fiveMembers(h)
	pid := h.propose(org, alice, transferAction(t, contract.ActionVaultTransfer, receiver, 30), defaultRule, 1, 10)

	require.NoError(t, h.rt.Vote(at(bob, 2), org, pid, 6, false))
	for _, m := range []sdk.AccountID{alice, carol, dave, erin} {
		require.NoError(t, h.rt.Vote(at(m, 2), org, pid, 20, true))
	}
	assert.Equal(t, uint64(1), h.proposalCount())
	assert.Equal(t, sdk.Balance(200), h.vault(org))

	// bob switches sides, the whole locked weight now counts as support
	require.NoError(t, h.rt.Vote(at(bob, 3), org, pid, 1, true))
	assert.Zero(t, h.proposalCount())
	assert.Equal(t, sdk.Balance(170), h.vault(org))
	assert.Equal(t, dao.AssetAccount{Free: 20}, h.tokenAccount(org, bob))
}

// TestRevoteMergesWeight checks repeated votes accumulate and only the last direction counts.
func TestRevoteMergesWeight(t *testing.T) {
	h := newHarness(t)
	org := fiveMembers(h)
	pid := h.propose(org, alice, nil, dao.NewRuleParam(90, 0, 0), 1, 10)

	require.NoError(t, h.rt.Vote(at(bob, 2), org, pid, 3, true))
	require.NoError(t, h.rt.Vote(at(bob, 2), org, pid, 5, false))

	p, err := h.rt.Proposal(pid)
	require.NoError(t, err)
	require.Len(t, p.Detail.Votes, 1)
	assert.Equal(t, dao.Vote{Voter: bob, Amount: 8, Approve: false}, p.Detail.Votes[0])
	assert.Equal(t, dao.AssetAccount{Free: 12, Frozen: 8}, h.tokenAccount(org, bob))

	err = h.rt.Vote(at(bob, 2), org, pid, 13, true)
	require.ErrorIs(t, err, ledger.ErrBalanceLow)
	p, err = h.rt.Proposal(pid)
	require.NoError(t, err)
	assert.Equal(t, sdk.Balance(8), p.Detail.Votes[0].Amount)
}

// ===================================================================
// Vote checks
// ===================================================================

// TestVoteRejections checks membership and ownership of the proposal.
func TestVoteRejections(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	h.endow(bob, 100)
	other := h.createOrg(bob, 100, defaultRule)
	pid := h.propose(org, alice, nil, defaultRule, 1, 10)

	err := h.rt.Vote(at(outsider, 2), org, pid, 1, true)
	assert.ErrorIs(t, err, contract.ErrNotMemberInOrg)

	err = h.rt.Vote(at(alice, 2), "nope", pid, 1, true)
	assert.ErrorIs(t, err, contract.ErrNotMemberInOrg)

	// bob is a member of other but pid belongs to org
	err = h.rt.Vote(at(bob, 2), other, pid, 1, true)
	assert.ErrorIs(t, err, contract.ErrProposalNotFound)

	err = h.rt.Vote(at(alice, 2), org, dao.ProposalID{9}, 1, true)
	assert.ErrorIs(t, err, contract.ErrProposalNotFound)

	err = h.rt.Vote(at(alice, 2), org, pid, 101, true)
	assert.ErrorIs(t, err, ledger.ErrBalanceLow)
	assert.Equal(t, dao.AssetAccount{Free: 100}, h.tokenAccount(org, alice))
}

// ===================================================================
// Action execution
// ===================================================================

// TestFailingActionStillCloses checks a failing action is reported and the bookkeeping still runs.
func TestFailingActionStillCloses(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	// the organization account itself holds no currency
	pid := h.propose(org, alice, transferAction(t, contract.ActionCurrencyTransfer, receiver, 10), defaultRule, 1, 5)
	h.rec.Reset()

	require.NoError(t, h.rt.Vote(at(alice, 2), org, pid, 80, true))

	assert.Zero(t, h.proposalCount())
	assert.Zero(t, h.currency(receiver))
	assert.Equal(t, sdk.Balance(200), h.vault(org))
	assert.Equal(t, dao.AssetAccount{Free: 100}, h.tokenAccount(org, alice))

	pf := h.rec.Filter(contract.EventProposalFinalized)
	require.Len(t, pf, 1)
	assert.Equal(t, "false", pf[0].Get("ok"))
	assert.Contains(t, pf[0].Get("err"), ledger.ErrBalanceLow.Error())
	assert.Len(t, h.rec.Filter(contract.EventProposalPassed), 1)
}

// TestActionFailuresAreReported covers every built in failure mode.
func TestActionFailuresAreReported(t *testing.T) {
	cases := []struct {
		name   string
		action func(t *testing.T) []byte
		err    error
	}{
		{"undecodable", func(*testing.T) []byte { return []byte("not an action") }, contract.ErrProposalDecodeFailed},
		{"unknown tag", func(t *testing.T) []byte { return mustAction(t, "self_destruct", nil) }, contract.ErrUnknownAction},
		{"bad payload", func(t *testing.T) []byte {
			raw, err := dao.Encode(dao.Action{Tag: contract.ActionVaultTransfer, Payload: []byte("{")})
			require.NoError(t, err)
			return raw
		}, contract.ErrProposalDecodeFailed},
		{"overdrawn vault", func(t *testing.T) []byte {
			return transferAction(t, contract.ActionVaultTransfer, receiver, 201)
		}, ledger.ErrBalanceLow},
		{"mint without issuance rights", func(t *testing.T) []byte {
			return mustAction(t, contract.ActionMint, dao.MintArgs{Amount: 5})
		}, ledger.ErrNoPermission},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			org := fundedOrg(h, defaultRule)
			pid := h.propose(org, alice, tc.action(t), defaultRule, 1, 5)
			h.rec.Reset()

			require.NoError(t, h.rt.Vote(at(alice, 2), org, pid, 61, true))

			pf := h.rec.Filter(contract.EventProposalFinalized)
			require.Len(t, pf, 1)
			assert.Equal(t, "false", pf[0].Get("ok"))
			assert.Contains(t, pf[0].Get("err"), tc.err.Error())
			assert.Zero(t, h.proposalCount())
			assert.Equal(t, sdk.Balance(200), h.vault(org))
		})
	}
}

// TestRemarkAction checks the remark lands in the committed events as the organization.
func TestRemarkAction(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	pid := h.propose(org, alice, mustAction(t, contract.ActionRemark, dao.RemarkArgs{Text: "hello dao"}), defaultRule, 1, 5)

	require.NoError(t, h.rt.Vote(at(alice, 2), org, pid, 70, true))
	rm := h.rec.Filter(contract.EventRemark)
	require.Len(t, rm, 1)
	assert.Equal(t, org.String(), rm[0].Get("org"))
	assert.Equal(t, "hello dao", rm[0].Get("t"))
}

// TestRegisteredHandlerRollsBack checks a custom handler that fails halfway leaves no writes or events.
func TestRegisteredHandlerRollsBack(t *testing.T) {
	h := newHarness(t)
	h.rt.Executor().Register("pay_then_fail", func(c *contract.Call, payload []byte) error {
		if err := c.Vault.Spend(c.Env.Caller, receiver, 50); err != nil {
			return err
		}
		c.Emit(sdk.NewEvent("custom", "step", "paid"))
		return contract.ErrUnknownAction
	})
	assert.Contains(t, h.rt.Executor().Tags(), "pay_then_fail")

	org := fundedOrg(h, defaultRule)
	pid := h.propose(org, alice, mustAction(t, "pay_then_fail", nil), defaultRule, 1, 5)
	h.rec.Reset()
	require.NoError(t, h.rt.Vote(at(alice, 2), org, pid, 61, true))

	assert.Equal(t, sdk.Balance(200), h.vault(org))
	assert.Zero(t, h.currency(receiver))
	assert.Empty(t, h.rec.Filter("custom"))
	assert.Empty(t, h.rec.Filter(ledger.EventVaultSpend))
	assert.Len(t, h.rec.Filter(contract.EventProposalPassed), 1)
}

// ===================================================================
// Atomicity
// ===================================================================

// TestFailedCallLeavesNoTrace checks a call that fails late rolls back its earlier writes.
func TestFailedCallLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	org := fundedOrg(h, defaultRule)
	action := transferAction(t, contract.ActionVaultTransfer, receiver, 10)
	h.propose(org, alice, action, defaultRule, 1, 5)
	h.rec.Reset()

	// the stake is locked before the duplicate is detected
	_, err := h.rt.CreateProposal(at(alice, 1), org, action, defaultRule, 5)
	require.ErrorIs(t, err, contract.ErrProposalDuplicate)
	assert.Equal(t, sdk.Balance(799), h.currency(alice))
	assert.Empty(t, h.rec.Events())
}

// TestPassingProposalPastExpiryIsRefused checks a rule that passes without votes does not execute
// once the expiry height is behind it.
func TestPassingProposalPastExpiryIsRefused(t *testing.T) {
	h := newHarness(t)
	lax := dao.NewRuleParam(0, 5, 0)
	org := fundedOrg(h, lax)
	pid := h.propose(org, alice, transferAction(t, contract.ActionVaultTransfer, receiver, 10), lax, 1, 5)
	h.rec.Reset()

	outcome, err := h.rt.Close(at(bob, 9), org, pid)
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeRefused, outcome)

	assert.Equal(t, []string{ledger.EventVaultUnlocked, contract.EventProposalRefused}, h.rec.Kinds())
	assert.Empty(t, h.rec.Filter(ledger.EventVaultSpend))
	assert.Empty(t, h.rec.Filter(contract.EventProposalFinalized))
	assert.Equal(t, sdk.Balance(200), h.vault(org))
	assert.Zero(t, h.currency(receiver))
	assert.Zero(t, h.proposalCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.m.Closed.WithLabelValues("refused")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.m.Closed.WithLabelValues("passed")))
}

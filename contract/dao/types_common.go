package dao

import (
	"encoding/hex"
	"fmt"

	"okinoko_gov/sdk"
)

// AssetAccount is the per (asset, account) balance record. Total is what counts as voting power.
type AssetAccount struct {
	Free   sdk.Balance
	Frozen sdk.Balance
}

// Total returns free plus frozen, saturating so a corrupt record cannot wrap.
func (a AssetAccount) Total() sdk.Balance {
	return sdk.SaturatingAdd(a.Free, a.Frozen)
}

// IsZero reports whether the record can be dropped from storage.
func (a AssetAccount) IsZero() bool {
	return a.Free == 0 && a.Frozen == 0
}

// AssetIssuance tracks who may mint/burn an asset and its supply.
type AssetIssuance struct {
	Issuer sdk.AccountID
	Supply sdk.Balance
}

// Organization is a DAO instance. Members keep insertion order and never repeat.
type Organization struct {
	Members []sdk.AccountID
	Rule    RuleParam
	TokenID sdk.AssetID
}

// IsMember does a linear scan, member lists are small and ordered by join time.
func (o *Organization) IsMember(who sdk.AccountID) bool {
	for _, m := range o.Members {
		if m == who {
			return true
		}
	}
	return false
}

// AddMember appends who and reports false if it was already present.
func (o *Organization) AddMember(who sdk.AccountID) bool {
	if o.IsMember(who) {
		return false
	}
	o.Members = append(o.Members, who)
	return true
}

// Count is the number of members.
func (o *Organization) Count() int {
	return len(o.Members)
}

// Vote is one voter's entry: accumulated locked amount plus the latest direction.
type Vote struct {
	Voter   sdk.AccountID
	Amount  sdk.Balance
	Approve bool
}

// ProposalDetail holds everything about a proposal besides its org and action.
// Votes keep first-vote order so the encoding (and thereby the id) stays deterministic.
type ProposalDetail struct {
	Votes     []Vote
	Creator   sdk.AccountID
	ExpiresAt uint64
	Rule      RuleParam
}

// NewProposalDetail starts a detail without votes.
func NewProposalDetail(creator sdk.AccountID, expiresAt uint64, rule RuleParam) ProposalDetail {
	return ProposalDetail{Creator: creator, ExpiresAt: expiresAt, Rule: rule}
}

// Vote merges a new vote: the amount accumulates (saturating) and the latest direction wins.
func (d *ProposalDetail) Vote(voter sdk.AccountID, amount sdk.Balance, approve bool) {
	for i := range d.Votes {
		if d.Votes[i].Voter == voter {
			d.Votes[i].Amount = sdk.SaturatingAdd(d.Votes[i].Amount, amount)
			d.Votes[i].Approve = approve
			return
		}
	}
	d.Votes = append(d.Votes, Vote{Voter: voter, Amount: amount, Approve: approve})
}

// VoteOf returns the entry of voter, if any.
func (d *ProposalDetail) VoteOf(voter sdk.AccountID) (Vote, bool) {
	for _, v := range d.Votes {
		if v.Voter == voter {
			return v, true
		}
	}
	return Vote{}, false
}

// Summary sums weights by direction. There is no abstain action so abstention is always zero.
func (d *ProposalDetail) Summary() (yes, no sdk.Balance) {
	for _, v := range d.Votes {
		if v.Approve {
			yes = sdk.SaturatingAdd(yes, v.Amount)
		} else {
			no = sdk.SaturatingAdd(no, v.Amount)
		}
	}
	return yes, no
}

// IsExpired is true strictly after the expiry height.
func (d *ProposalDetail) IsExpired(height uint64) bool {
	return height > d.ExpiresAt
}

// Pass checks the tallies against the proposal's own rule.
func (d *ProposalDetail) Pass(total sdk.Balance) bool {
	yes, no := d.Summary()
	return d.Rule.IsPass(yes, no, 0, total)
}

// Proposal is the stored governance request. Its id is the hash of its encoding.
type Proposal struct {
	Org    sdk.AccountID
	Action []byte
	Detail ProposalDetail
}

// ProposalID is the blake2b-256 content hash of an encoded proposal.
type ProposalID [32]byte

// String prints the id as 0x-prefixed hex, the same form events use.
func (id ProposalID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// ParseProposalID reads the String form back.
// Example payload: dao.ParseProposalID("0x0102...")
func ParseProposalID(s string) (ProposalID, error) {
	var id ProposalID
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("proposal id: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("proposal id: want %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// Action is a bundled command executed as the organization once a proposal passes.
// Tag selects the handler and Payload is the handler specific encoding.
type Action struct {
	Tag     string
	Payload []byte
}

// TransferArgs is the payload of the value moving actions.
type TransferArgs struct {
	To     sdk.AccountID
	Amount sdk.Balance
}

// RemarkArgs is the payload of the remark action.
type RemarkArgs struct {
	Text string
}

// MintArgs is the payload of the mint action.
type MintArgs struct {
	Amount sdk.Balance
}

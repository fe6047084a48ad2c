package contract

import (
	"strconv"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// event kinds for organization and proposal activity
const (
	EventOrganizationCreated = "oc"
	EventMemberAdded         = "ma"
	EventProposalCreated     = "pc"
	EventVoteCast            = "v"
	EventProposalFinalized   = "pf"
	EventProposalPassed      = "pp"
	EventProposalRefused     = "pr"
	EventRemark              = "rm"
)

// emitOrganizationCreatedEvent gives explorers the new id, the counter it came from and the baseline.
func emitOrganizationCreatedEvent(sink sdk.EventSink, org sdk.AccountID, counter uint32, creator sdk.AccountID, o *dao.Organization) {
	sink.Emit(sdk.NewEvent(EventOrganizationCreated,
		"org", org.String(),
		"n", strconv.FormatUint(uint64(counter), 10),
		"by", creator.String(),
		"tk", o.TokenID.String(),
		"r", o.Rule.String(),
	))
}

// emitMemberAddedEvent mirrors the join ping and carries the tokens handed over with the seat.
func emitMemberAddedEvent(sink sdk.EventSink, org, actor, member sdk.AccountID, assigned sdk.Balance) {
	sink.Emit(sdk.NewEvent(EventMemberAdded,
		"org", org.String(),
		"by", actor.String(),
		"m", member.String(),
		"am", assigned.String(),
	))
}

// emitProposalCreatedEvent keeps observers updated with a short pc line for every new idea.
func emitProposalCreatedEvent(sink sdk.EventSink, org sdk.AccountID, pid dao.ProposalID, creator sdk.AccountID) {
	sink.Emit(sdk.NewEvent(EventProposalCreated,
		"org", org.String(),
		"id", pid.String(),
		"by", creator.String(),
	))
}

// emitVoteCasted includes weight plus direction so tallies can be replayed from logs only.
func emitVoteCasted(sink sdk.EventSink, org sdk.AccountID, pid dao.ProposalID, voter sdk.AccountID, amount sdk.Balance, approve bool) {
	sink.Emit(sdk.NewEvent(EventVoteCast,
		"org", org.String(),
		"id", pid.String(),
		"by", voter.String(),
		"w", amount.String(),
		"y", strconv.FormatBool(approve),
	))
}

// emitProposalFinalizedEvent reports how the bundled action went, failures only live here.
func emitProposalFinalizedEvent(sink sdk.EventSink, pid dao.ProposalID, execErr error) {
	reason := ""
	if execErr != nil {
		reason = execErr.Error()
	}
	sink.Emit(sdk.NewEvent(EventProposalFinalized,
		"id", pid.String(),
		"ok", strconv.FormatBool(execErr == nil),
		"err", reason,
	))
}

// emitProposalClosedEvent logs pp or pr once a proposal left storage.
func emitProposalClosedEvent(sink sdk.EventSink, kind string, pid dao.ProposalID) {
	sink.Emit(sdk.NewEvent(kind, "id", pid.String()))
}

// emitRemarkEvent is the only effect of a remark action.
func emitRemarkEvent(sink sdk.EventSink, org sdk.AccountID, text string) {
	sink.Emit(sdk.NewEvent(EventRemark, "org", org.String(), "t", text))
}

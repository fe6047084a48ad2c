package contract

import (
	"errors"

	"okinoko_gov/contract/ledger"
)

var (
	// ErrStorageOverflow is returned when the organization counter is exhausted.
	ErrStorageOverflow = errors.New("storage overflow")
	// ErrOrganizationNotFound is returned for unknown organization ids.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrTokenBalanceLow is returned when a member cannot cover the tokens assigned to a new member.
	ErrTokenBalanceLow = errors.New("token balance low")
	// ErrNotMemberInOrg is returned when the acting account is not a member.
	ErrNotMemberInOrg = errors.New("not member in org")
	// ErrMemberDuplicate is returned when adding someone already in the organization.
	ErrMemberDuplicate = errors.New("member duplicate")
	// ErrProposalNotFound is returned for unknown or already closed proposals.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrProposalDecodeFailed is returned when stored proposal or action bytes cannot be decoded.
	ErrProposalDecodeFailed = errors.New("proposal decode failed")
	// ErrProposalDuplicate is returned when identical proposal content is already staged.
	ErrProposalDuplicate = errors.New("proposal duplicate")
	// ErrProposalExpired is returned when voting on a proposal past its expiry height.
	ErrProposalExpired = errors.New("proposal expired")
	// ErrWrongRuleParam is returned for out of range rules or rules weaker than the org baseline.
	ErrWrongRuleParam = errors.New("wrong rule param")
	// ErrUnknownAction is returned by the executor for tags nobody registered.
	ErrUnknownAction = errors.New("unknown action")
)

// Class groups errors the way callers usually want to react to them.
type Class string

const (
	ClassNone                Class = ""
	ClassNotFound            Class = "not_found"
	ClassPermissionDenied    Class = "permission_denied"
	ClassInsufficientBalance Class = "insufficient_balance"
	ClassDuplicate           Class = "duplicate"
	ClassInvalidRule         Class = "invalid_rule"
	ClassOverflow            Class = "overflow"
	ClassExpired             Class = "expired"
	ClassInvalidInput        Class = "invalid_input"
	ClassInternal            Class = "internal"
)

var classes = []struct {
	err   error
	class Class
}{
	{ErrOrganizationNotFound, ClassNotFound},
	{ErrProposalNotFound, ClassNotFound},
	{ledger.ErrUnknown, ClassNotFound},
	{ledger.ErrUnknownOwnerID, ClassNotFound},
	{ErrNotMemberInOrg, ClassPermissionDenied},
	{ledger.ErrNoPermission, ClassPermissionDenied},
	{ErrTokenBalanceLow, ClassInsufficientBalance},
	{ledger.ErrBalanceLow, ClassInsufficientBalance},
	{ledger.ErrBalanceZero, ClassInsufficientBalance},
	{ErrMemberDuplicate, ClassDuplicate},
	{ErrProposalDuplicate, ClassDuplicate},
	{ErrWrongRuleParam, ClassInvalidRule},
	{ErrStorageOverflow, ClassOverflow},
	{ledger.ErrOverflow, ClassOverflow},
	{ErrProposalExpired, ClassExpired},
	{ledger.ErrAmountZero, ClassInvalidInput},
	{ErrProposalDecodeFailed, ClassInvalidInput},
	{ErrUnknownAction, ClassInvalidInput},
}

// ClassOf maps an error onto its class. Anything unknown (storage, codec) is internal.
func ClassOf(err error) Class {
	if err == nil {
		return ClassNone
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return ClassInternal
}

// keepChanges marks an error whose call should still commit, like a vote on an expired
// proposal that closed it on the way out.
type keepChanges struct {
	error
}

func (k keepChanges) Unwrap() error { return k.error }

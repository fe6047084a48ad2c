package contract

import (
	"errors"
	"fmt"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// Registry allocates organization ids and owns membership plus the rule baseline.
type Registry struct {
	c *Call
}

// Counter is the value the next organization will be derived from. Organizations are never
// removed, so it doubles as the organization count.
func (r *Registry) Counter() (uint32, error) {
	return nextOrgCounter(r.c.st)
}

// IDAt derives the organization id for a counter value, whether or not it exists yet.
func (r *Registry) IDAt(counter uint32) sdk.AccountID {
	return r.c.rt.orgIDs.SubAccount(counter)
}

// Get loads an organization or fails with ErrOrganizationNotFound.
func (r *Registry) Get(org sdk.AccountID) (*dao.Organization, error) {
	var o dao.Organization
	ok, err := dao.Load(r.c.st, organizationKey(org), &o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, org)
	}
	return &o, nil
}

// IsMember is false for unknown organizations as well.
func (r *Registry) IsMember(org, who sdk.AccountID) (bool, error) {
	o, err := r.Get(org)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return false, nil
		}
		return false, err
	}
	return o.IsMember(who), nil
}

// TotalToken is the supply of the organization's voting token.
func (r *Registry) TotalToken(org sdk.AccountID) (sdk.Balance, error) {
	o, err := r.Get(org)
	if err != nil {
		return 0, err
	}
	return r.c.Tokens.TotalSupply(o.TokenID)
}

// FreeToken is who's free balance of the organization's voting token.
func (r *Registry) FreeToken(org, who sdk.AccountID) (sdk.Balance, error) {
	o, err := r.Get(org)
	if err != nil {
		return 0, err
	}
	return r.c.Tokens.FreeBalance(o.TokenID, who)
}

func (r *Registry) save(org sdk.AccountID, o *dao.Organization) error {
	return dao.Save(r.c.st, organizationKey(org), o)
}

// Create issues a fresh voting token of total units to creator, makes creator the only member
// and stores the rule baseline under the next derived id.
func (r *Registry) Create(creator sdk.AccountID, total sdk.Balance, rule dao.RuleParam) (sdk.AccountID, error) {
	if err := rule.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrongRuleParam, err)
	}
	counter, err := r.Counter()
	if err != nil {
		return "", err
	}
	if err := bumpOrgCounter(r.c.st, counter); err != nil {
		return "", err
	}
	tokenID, err := r.c.Tokens.Create(creator, total)
	if err != nil {
		return "", err
	}
	o := &dao.Organization{Rule: rule, TokenID: tokenID}
	o.AddMember(creator)

	org := r.IDAt(counter)
	if err := r.save(org, o); err != nil {
		return "", err
	}
	emitOrganizationCreatedEvent(r.c.events, org, counter, creator, o)
	return org, nil
}

// AddMember lets any member seat a new one and optionally hand over some of its own free tokens.
// The transfer happens before the member is written so a failing transfer never leaves a seat.
func (r *Registry) AddMember(actor, member, org sdk.AccountID, assign sdk.Balance) error {
	o, err := r.Get(org)
	if err != nil {
		return err
	}
	if !o.IsMember(actor) {
		return fmt.Errorf("%w: %s in %s", ErrNotMemberInOrg, actor, org)
	}
	if o.IsMember(member) {
		return fmt.Errorf("%w: %s in %s", ErrMemberDuplicate, member, org)
	}
	if assign > 0 {
		free, err := r.c.Tokens.FreeBalance(o.TokenID, actor)
		if err != nil {
			return err
		}
		if free < assign {
			return fmt.Errorf("%w: assign %d, free %d", ErrTokenBalanceLow, assign, free)
		}
		if err := r.c.Tokens.Transfer(o.TokenID, actor, member, assign); err != nil {
			return err
		}
	}
	o.AddMember(member)
	if err := r.save(org, o); err != nil {
		return err
	}
	emitMemberAddedEvent(r.c.events, org, actor, member, assign)
	return nil
}

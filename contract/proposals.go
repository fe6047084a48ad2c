package contract

import (
	"fmt"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// -----------------------------------------------------------------------------
// Proposals
// -----------------------------------------------------------------------------

// ProposalEngine creates, stores and removes proposals. Ids are content hashes.
type ProposalEngine struct {
	c *Call
}

// Get loads a proposal, ErrProposalNotFound when absent and ErrProposalDecodeFailed when the
// stored bytes do not parse.
func (p *ProposalEngine) Get(pid dao.ProposalID) (*dao.Proposal, error) {
	raw, ok, err := p.c.st.Get(proposalKey(pid))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, pid)
	}
	prop, err := dao.DecodeProposal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProposalDecodeFailed, pid, err)
	}
	return prop, nil
}

// Exists checks for the key without decoding.
func (p *ProposalEngine) Exists(pid dao.ProposalID) (bool, error) {
	_, ok, err := p.c.st.Get(proposalKey(pid))
	return ok, err
}

// Count is the number of proposals that are still open.
func (p *ProposalEngine) Count() (uint64, error) {
	return proposalCount(p.c.st)
}

// Create validates the rule against the organization baseline and the creator's membership,
// locks the proposal stake and stores the proposal under its content hash.
func (p *ProposalEngine) Create(org, creator sdk.AccountID, action []byte, rule dao.RuleParam, expiresAt uint64) (dao.ProposalID, error) {
	o, err := p.c.Orgs.Get(org)
	if err != nil {
		return dao.ProposalID{}, err
	}
	if err := rule.Validate(); err != nil {
		return dao.ProposalID{}, fmt.Errorf("%w: %v", ErrWrongRuleParam, err)
	}
	if !o.Rule.InheritValid(rule) {
		return dao.ProposalID{}, fmt.Errorf("%w: %s is weaker than baseline %s", ErrWrongRuleParam, rule, o.Rule)
	}
	if !o.IsMember(creator) {
		return dao.ProposalID{}, fmt.Errorf("%w: %s in %s", ErrNotMemberInOrg, creator, org)
	}
	if err := p.c.Vault.LockBalance(org, creator, p.c.rt.stake); err != nil {
		return dao.ProposalID{}, err
	}

	prop := &dao.Proposal{
		Org:    org,
		Action: action,
		Detail: dao.NewProposalDetail(creator, expiresAt, rule),
	}
	pid, err := dao.MakeProposalID(prop)
	if err != nil {
		return dao.ProposalID{}, err
	}
	exists, err := p.Exists(pid)
	if err != nil {
		return dao.ProposalID{}, err
	}
	if exists {
		return dao.ProposalID{}, fmt.Errorf("%w: %s", ErrProposalDuplicate, pid)
	}
	if err := p.save(pid, prop); err != nil {
		return dao.ProposalID{}, err
	}
	if err := adjustProposalCount(p.c.st, 1); err != nil {
		return dao.ProposalID{}, err
	}
	if err := addToIndex(p.c.st, openProposalsIndex(org), pid); err != nil {
		return dao.ProposalID{}, err
	}
	emitProposalCreatedEvent(p.c.events, org, pid, creator)
	return pid, nil
}

// save overwrites the stored proposal, the id never changes after creation.
func (p *ProposalEngine) save(pid dao.ProposalID, prop *dao.Proposal) error {
	return dao.Save(p.c.st, proposalKey(pid), prop)
}

// Remove deletes the proposal and its index entry, removing something that is not there is fine.
func (p *ProposalEngine) Remove(pid dao.ProposalID) error {
	raw, ok, err := p.c.st.Get(proposalKey(pid))
	if err != nil || !ok {
		return err
	}
	// a record that no longer decodes cannot name its organization, it only leaves storage
	if prop, err := dao.DecodeProposal(raw); err == nil {
		if err := removeFromIndex(p.c.st, openProposalsIndex(prop.Org), pid); err != nil {
			return err
		}
	}
	if err := p.c.st.Delete(proposalKey(pid)); err != nil {
		return err
	}
	return adjustProposalCount(p.c.st, -1)
}

// Open lists the ids of org's open proposals, chunk by chunk.
func (p *ProposalEngine) Open(org sdk.AccountID) ([]dao.ProposalID, error) {
	return listIndex(p.c.st, openProposalsIndex(org))
}

package dao

import "golang.org/x/crypto/blake2b"

// MakeProposalID hashes the canonical encoding of p. Byte identical proposals share an id,
// which is what lets the engine reject duplicates.
func MakeProposalID(p *Proposal) (ProposalID, error) {
	raw, err := EncodeProposal(p)
	if err != nil {
		return ProposalID{}, err
	}
	return ProposalID(blake2b.Sum256(raw)), nil
}

package contract

import (
	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// organizationKey puts the org id behind the 0x20 prefix.
func organizationKey(org sdk.AccountID) string {
	buf := make([]byte, 0, 1+len(org))
	buf = append(buf, kOrganization)
	buf = append(buf, org...)
	return string(buf)
}

// proposalKey uses the raw 32 hash bytes, no need to hex them for storage.
func proposalKey(id dao.ProposalID) string {
	var buf [1 + len(dao.ProposalID{})]byte
	buf[0] = kProposal
	copy(buf[1:], id[:])
	return string(buf[:])
}

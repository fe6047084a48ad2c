package contract

import (
	"fmt"
	"math"

	"okinoko_gov/sdk"
)

// nextOrgCounter returns the counter the next organization gets. It stays within uint32 since
// ids are derived from it.
func nextOrgCounter(st sdk.State) (uint32, error) {
	n, err := sdk.GetCount(st, OrgCount)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: organization counter at %d", ErrStorageOverflow, n)
	}
	return uint32(n), nil
}

// bumpOrgCounter stores counter+1 and fails instead of wrapping around.
func bumpOrgCounter(st sdk.State, counter uint32) error {
	if counter == math.MaxUint32 {
		return fmt.Errorf("%w: organization counter exhausted", ErrStorageOverflow)
	}
	return sdk.SetCount(st, OrgCount, uint64(counter)+1)
}

// proposalCount reads how many proposals are stored right now.
func proposalCount(st sdk.State) (uint64, error) {
	return sdk.GetCount(st, ProposalsCount)
}

// adjustProposalCount moves the live proposal count by delta (+1 on insert, -1 on remove).
func adjustProposalCount(st sdk.State, delta int) error {
	n, err := proposalCount(st)
	if err != nil {
		return err
	}
	switch {
	case delta > 0:
		n += uint64(delta)
	case uint64(-delta) > n:
		n = 0
	default:
		n -= uint64(-delta)
	}
	return sdk.SetCount(st, ProposalsCount, n)
}

package contract

// -----------------------------------------------------------------------------
// Module Identifiers
// -----------------------------------------------------------------------------

const (
	// DefaultCustodyModule derives the single pot account every vault lives in.
	DefaultCustodyModule = "py/asset"
	// DefaultOrgModule derives organization ids from the organization counter.
	DefaultOrgModule = "py/idvol"
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	// DefaultProposalStake is the flat base currency deposit locked per proposal.
	DefaultProposalStake = 1
	// DefaultAccountCacheSize bounds the derived organization id cache.
	DefaultAccountCacheSize = 1024
)

// -----------------------------------------------------------------------------
// Counter Keys
// -----------------------------------------------------------------------------

const (
	// OrgCount holds the next organization counter value (never reused).
	OrgCount = "count:org"
	// ProposalsCount holds the number of proposals currently stored.
	ProposalsCount = "count:props"
)

// -----------------------------------------------------------------------------
// Storage Key Prefixes
// -----------------------------------------------------------------------------

const (
	// kOrganization stores encoded Organization records keyed by org id.
	kOrganization byte = 0x20
	// kProposal stores encoded Proposal records keyed by content hash.
	kProposal byte = 0x21
)

package ledger

import "okinoko_gov/sdk"

// event kinds, kept short since every line ends up in the host log
const (
	EventIssued        = "ti"
	EventTransferred   = "tt"
	EventMinted        = "tm"
	EventBurned        = "tb"
	EventLocked        = "tl"
	EventUnlocked      = "tu"
	EventVaultDeposit  = "vd"
	EventVaultSpend    = "vs"
	EventVaultLocked   = "vl"
	EventVaultUnlocked = "vu"
)

// emitAssetEvent covers every token event, they all carry asset, account and amount.
func emitAssetEvent(sink sdk.EventSink, kind string, asset sdk.AssetID, who sdk.AccountID, amount sdk.Balance) {
	sink.Emit(sdk.NewEvent(kind,
		"as", asset.String(),
		"by", who.String(),
		"am", amount.String(),
	))
}

// emitTransferredEvent names both sides so indexers can rebuild balances from logs only.
func emitTransferredEvent(sink sdk.EventSink, asset sdk.AssetID, from, to sdk.AccountID, amount sdk.Balance) {
	sink.Emit(sdk.NewEvent(EventTransferred,
		"as", asset.String(),
		"from", from.String(),
		"to", to.String(),
		"am", amount.String(),
	))
}

// emitVaultEvent is the vault flavour: org plus the account on the other side of the move.
func emitVaultEvent(sink sdk.EventSink, kind string, org, who sdk.AccountID, amount sdk.Balance) {
	sink.Emit(sdk.NewEvent(kind,
		"org", org.String(),
		"by", who.String(),
		"am", amount.String(),
	))
}

package ledger

import "okinoko_gov/sdk"

// storage key prefixes, one byte each so keys stay compact
const (
	kAssetAccount  byte = 0x10 // + assetID + account
	kAssetIssuance byte = 0x11 // + assetID
	kVaultBalance  byte = 0x12 // + org
	kVaultLocked   byte = 0x13 // + org len + org + account

	// nextAssetKey holds the next asset id as a decimal counter
	nextAssetKey = "count:asset"
)

// packU32LE appends the encoded number to dst and returns the new slice.
func packU32LE(x uint32, dst []byte) []byte {
	return append(dst, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// assetAccountKey mixes asset id plus account bytes to avoid nested maps in storage.
func assetAccountKey(asset sdk.AssetID, who sdk.AccountID) string {
	buf := make([]byte, 0, 1+4+len(who))
	buf = append(buf, kAssetAccount)
	buf = packU32LE(uint32(asset), buf)
	buf = append(buf, who...)
	return string(buf)
}

func assetIssuanceKey(asset sdk.AssetID) string {
	buf := make([]byte, 0, 5)
	buf = append(buf, kAssetIssuance)
	buf = packU32LE(uint32(asset), buf)
	return string(buf)
}

func vaultBalanceKey(org sdk.AccountID) string {
	buf := make([]byte, 0, 1+len(org))
	buf = append(buf, kVaultBalance)
	buf = append(buf, org...)
	return string(buf)
}

// vaultLockedKey length-prefixes the org so ("ab","c") and ("a","bc") never share a key.
func vaultLockedKey(org, who sdk.AccountID) string {
	buf := make([]byte, 0, 1+4+len(org)+len(who))
	buf = append(buf, kVaultLocked)
	buf = packU32LE(uint32(len(org)), buf)
	buf = append(buf, org...)
	buf = append(buf, who...)
	return string(buf)
}

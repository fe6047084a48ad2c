package dao

import (
	"fmt"

	"github.com/CosmWasm/tinyjson"

	"okinoko_gov/sdk"
)

// Load reads and decodes the record under key. ok is false when the key is absent.
func Load(st sdk.State, key string, v tinyjson.Unmarshaler) (bool, error) {
	raw, ok, err := st.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := Decode(raw, v); err != nil {
		return true, fmt.Errorf("record %x: %w", key, err)
	}
	return true, nil
}

// Save encodes v and writes it under key.
func Save(st sdk.State, key string, v tinyjson.Marshaler) error {
	raw, err := Encode(v)
	if err != nil {
		return err
	}
	return st.Set(key, raw)
}

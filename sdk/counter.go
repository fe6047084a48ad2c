package sdk

import (
	"strconv"

	"github.com/pkg/errors"
)

// GetCount reads the decimal counter under the key and defaults to zero, nothing magical here.
func GetCount(st State, key string) (uint64, error) {
	raw, ok, err := st.Get(key)
	if err != nil || !ok || len(raw) == 0 {
		return 0, err
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "counter %s", key)
	}
	return n, nil
}

// SetCount stores the counter back as decimal text.
func SetCount(st State, key string, n uint64) error {
	return st.Set(key, []byte(strconv.FormatUint(n, 10)))
}

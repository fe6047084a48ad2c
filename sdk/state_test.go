package sdk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gov/sdk"
)

func get(t *testing.T, st sdk.State, key string) (string, bool) {
	t.Helper()
	v, ok, err := st.Get(key)
	require.NoError(t, err)
	return string(v), ok
}

// ===================================================================
// Overlay
// ===================================================================

// TestOverlayBuffersUntilCommit checks reads see buffered writes and tombstones before the parent does.
func TestOverlayBuffersUntilCommit(t *testing.T) {
	txn, err := sdk.NewMemStore().Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set("a", []byte("1")))
	require.NoError(t, txn.Set("b", []byte("2")))

	ov := sdk.NewOverlay(txn)
	require.NoError(t, ov.Set("a", []byte("10")))
	require.NoError(t, ov.Delete("b"))
	require.NoError(t, ov.Set("c", []byte("3")))
	assert.Equal(t, 3, ov.Len())

	v, ok := get(t, ov, "a")
	assert.True(t, ok)
	assert.Equal(t, "10", v)
	_, ok = get(t, ov, "b")
	assert.False(t, ok)

	// parent untouched so far
	v, _ = get(t, txn, "a")
	assert.Equal(t, "1", v)
	_, ok = get(t, txn, "b")
	assert.True(t, ok)

	require.NoError(t, ov.Commit())
	v, _ = get(t, txn, "a")
	assert.Equal(t, "10", v)
	_, ok = get(t, txn, "b")
	assert.False(t, ok)
	v, _ = get(t, txn, "c")
	assert.Equal(t, "3", v)

	_, _, err = ov.Get("a")
	assert.ErrorIs(t, err, sdk.ErrTxnDone)
	assert.ErrorIs(t, ov.Commit(), sdk.ErrTxnDone)
}

// TestOverlayDiscard checks a discarded overlay leaves the parent alone.
func TestOverlayDiscard(t *testing.T) {
	txn, err := sdk.NewMemStore().Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set("a", []byte("1")))

	ov := sdk.NewOverlay(txn)
	require.NoError(t, ov.Set("a", []byte("2")))
	require.NoError(t, ov.Delete("a"))
	ov.Discard()

	v, ok := get(t, txn, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.ErrorIs(t, ov.Set("x", nil), sdk.ErrTxnDone)
}

// TestOverlayCopiesValues checks callers mutating their slices cannot reach stored bytes.
func TestOverlayCopiesValues(t *testing.T) {
	ov := sdk.NewOverlay(nil)
	buf := []byte("abc")
	require.NoError(t, ov.Set("k", buf))
	buf[0] = 'X'
	v, _ := get(t, ov, "k")
	assert.Equal(t, "abc", v)
}

// ===================================================================
// Stores
// ===================================================================

// storeContract is run against every Store implementation.
func storeContract(t *testing.T, store sdk.Store) {
	t.Helper()

	txn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set("k1", []byte("v1")))
	require.NoError(t, txn.Set("k2", []byte("v2")))
	require.NoError(t, txn.Commit())

	// discarded writes vanish
	txn, err = store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set("k1", []byte("changed")))
	require.NoError(t, txn.Delete("k2"))
	txn.Discard()

	view, err := store.Begin(false)
	require.NoError(t, err)
	v, ok := get(t, view, "k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
	_, ok = get(t, view, "k2")
	assert.True(t, ok)
	_, ok = get(t, view, "missing")
	assert.False(t, ok)
	assert.ErrorIs(t, view.Set("k3", []byte("x")), sdk.ErrReadOnly)
	view.Discard()

	txn, err = store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Delete("k2"))
	require.NoError(t, txn.Commit())
	assert.ErrorIs(t, txn.Commit(), sdk.ErrTxnDone)

	view, err = store.Begin(false)
	require.NoError(t, err)
	defer view.Discard()
	_, ok = get(t, view, "k2")
	assert.False(t, ok)
}

func TestMemStore(t *testing.T) {
	store := sdk.NewMemStore()
	storeContract(t, store)
	assert.Equal(t, 1, store.Len())
}

func TestBadgerStore(t *testing.T) {
	store, err := sdk.OpenBadger("")
	require.NoError(t, err)
	defer store.Close()
	storeContract(t, store)
}

// TestFileMemStoreSnapshot checks binary keys survive the JSON round trip.
func TestFileMemStoreSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := sdk.NewFileMemStore(path)
	require.NoError(t, err)

	txn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set(string([]byte{0x10, 0x00, 0xff}), []byte{0x01, 0x02}))
	require.NoError(t, sdk.SetCount(txn, "count:org", 7))
	require.NoError(t, txn.Commit())

	reopened, err := sdk.NewFileMemStore(path)
	require.NoError(t, err)
	view, err := reopened.Begin(false)
	require.NoError(t, err)
	v, ok, err := view.Get(string([]byte{0x10, 0x00, 0xff}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, v)
	n, err := sdk.GetCount(view, "count:org")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

// TestCounterDefaultsToZero checks a missing counter reads as zero and garbage is an error.
func TestCounterDefaultsToZero(t *testing.T) {
	txn, err := sdk.NewMemStore().Begin(true)
	require.NoError(t, err)
	n, err := sdk.GetCount(txn, "nothing")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, txn.Set("bad", []byte("x1")))
	_, err = sdk.GetCount(txn, "bad")
	assert.ErrorContains(t, err, "counter bad")
}

// TestFileMemStoreCloseAfterReadsOnly checks a store that was only read does not rewrite the snapshot.
func TestFileMemStoreCloseAfterReadsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := sdk.NewFileMemStore(path)
	require.NoError(t, err)
	txn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, sdk.SetCount(txn, "count:org", 2))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	reopened, err := sdk.NewFileMemStore(path)
	require.NoError(t, err)
	view, err := reopened.Begin(false)
	require.NoError(t, err)
	n, err := sdk.GetCount(view, "count:org")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	view.Discard()

	// the file is gone before Close, a read only session must not bring it back
	require.NoError(t, os.Remove(path))
	require.NoError(t, reopened.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

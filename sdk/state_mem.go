package sdk

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// MemStore keeps the whole state in a map. With a filename set it snapshots to JSON after
// every commit so a local run can be inspected or resumed.
type MemStore struct {
	mu       sync.RWMutex
	db       map[string][]byte
	filename string
	// dirty is set when a commit could not be written to the snapshot
	dirty bool
}

// NewMemStore returns an empty store that never touches disk.
func NewMemStore() *MemStore {
	return &MemStore{db: make(map[string][]byte)}
}

// NewFileMemStore loads filename if it exists and keeps it updated on every commit.
func NewFileMemStore(filename string) (*MemStore, error) {
	m := &MemStore{db: make(map[string][]byte), filename: filename}
	if err := m.LoadFromFile(); err != nil {
		return nil, err
	}
	return m, nil
}

// Begin opens an overlay txn over the map. Writes land in the map only on Commit.
func (m *MemStore) Begin(update bool) (Txn, error) {
	return &memTxn{store: m, Overlay: NewOverlay(memView{m}), update: update}, nil
}

// Close retries the snapshot write when the last one failed. A store that was only read
// leaves the file untouched.
func (m *MemStore) Close() error {
	if m.filename == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}
	if err := m.saveToFile(); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// Len returns the number of stored keys.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}

type memView struct{ m *MemStore }

func (v memView) Get(key string) ([]byte, bool, error) {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	val, ok := v.m.db[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(val), true, nil
}

func (v memView) Set(key string, value []byte) error {
	v.m.db[key] = cloneBytes(value)
	return nil
}

func (v memView) Delete(key string) error {
	delete(v.m.db, key)
	return nil
}

type memTxn struct {
	*Overlay
	store  *MemStore
	update bool
}

func (t *memTxn) Set(key string, value []byte) error {
	if !t.update {
		return ErrReadOnly
	}
	return t.Overlay.Set(key, value)
}

func (t *memTxn) Delete(key string) error {
	if !t.update {
		return ErrReadOnly
	}
	return t.Overlay.Delete(key)
}

// Commit applies the overlay under the write lock, memView writes assume the lock is held.
func (t *memTxn) Commit() error {
	if !t.update {
		t.Overlay.Discard()
		return nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if err := t.Overlay.Commit(); err != nil {
		return err
	}
	if t.store.filename == "" {
		return nil
	}
	if err := t.store.saveToFile(); err != nil {
		t.store.dirty = true
		return err
	}
	t.store.dirty = false
	return nil
}

// saveToFile writes the full map to a JSON file, keys are hex since they are binary.
func (m *MemStore) saveToFile() error {
	out := make(map[string]string, len(m.db))
	for k, v := range m.db {
		out[hex.EncodeToString([]byte(k))] = hex.EncodeToString(v)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrap(os.WriteFile(m.filename, data, 0o644), "write state snapshot")
}

// LoadFromFile loads the map from the JSON snapshot, a missing file is an empty state.
func (m *MemStore) LoadFromFile() error {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read state snapshot")
	}
	var in map[string]string
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "decode state snapshot")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range in {
		key, err := hex.DecodeString(k)
		if err != nil {
			return errors.Wrapf(err, "snapshot key %q", k)
		}
		val, err := hex.DecodeString(v)
		if err != nil {
			return errors.Wrapf(err, "snapshot value for %q", k)
		}
		m.db[string(key)] = val
	}
	return nil
}

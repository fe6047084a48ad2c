package sdk

import "sort"

// State is the key value surface the contract code reads and writes through.
// Get returns ok=false for missing keys, a missing key is never an error.
type State interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Txn is a State that either commits all of its writes or none of them.
type Txn interface {
	State
	Commit() error
	Discard()
}

// Store hands out transactions, one per host call.
type Store interface {
	Begin(update bool) (Txn, error)
	Close() error
}

// Overlay buffers writes on top of a parent State until Commit pushes them down.
// The runtime uses it as a savepoint around bundled actions and as the txn of the memory store.
type Overlay struct {
	parent State
	writes map[string][]byte
	// deleted keys are kept as tombstones so a Get does not fall through to the parent
	deleted map[string]struct{}
	done    bool
}

// NewOverlay starts an empty write buffer over parent.
func NewOverlay(parent State) *Overlay {
	return &Overlay{
		parent:  parent,
		writes:  make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

// Get prefers buffered writes, then tombstones, then the parent.
func (o *Overlay) Get(key string) ([]byte, bool, error) {
	if o.done {
		return nil, false, ErrTxnDone
	}
	if v, ok := o.writes[key]; ok {
		return cloneBytes(v), true, nil
	}
	if _, ok := o.deleted[key]; ok {
		return nil, false, nil
	}
	return o.parent.Get(key)
}

// Set buffers the value, the parent is untouched until Commit.
func (o *Overlay) Set(key string, value []byte) error {
	if o.done {
		return ErrTxnDone
	}
	delete(o.deleted, key)
	o.writes[key] = cloneBytes(value)
	return nil
}

// Delete records a tombstone for the key.
func (o *Overlay) Delete(key string) error {
	if o.done {
		return ErrTxnDone
	}
	delete(o.writes, key)
	o.deleted[key] = struct{}{}
	return nil
}

// Len returns how many keys the overlay touched, handy for tests and metrics.
func (o *Overlay) Len() int {
	return len(o.writes) + len(o.deleted)
}

// Commit flushes the buffered writes into the parent in key order so badger txns see a stable sequence.
func (o *Overlay) Commit() error {
	if o.done {
		return ErrTxnDone
	}
	o.done = true
	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := o.parent.Set(k, o.writes[k]); err != nil {
			return err
		}
	}
	dels := make([]string, 0, len(o.deleted))
	for k := range o.deleted {
		dels = append(dels, k)
	}
	sort.Strings(dels)
	for _, k := range dels {
		if err := o.parent.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write.
func (o *Overlay) Discard() {
	o.done = true
	o.writes = nil
	o.deleted = nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

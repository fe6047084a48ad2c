package sdk

import (
	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
)

// BadgerStore persists state in badger, every host call maps onto one badger txn.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a store at dir. An empty dir runs badger fully in memory.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &BadgerStore{db: db}, nil
}

// Begin starts a badger txn, update=false gives a read only snapshot.
func (s *BadgerStore) Begin(update bool) (Txn, error) {
	return &badgerTxn{txn: s.db.NewTransaction(update)}, nil
}

// Close releases the badger handles.
func (s *BadgerStore) Close() error {
	return errors.Wrap(s.db.Close(), "close badger")
}

type badgerTxn struct {
	txn  *badger.Txn
	done bool
}

func (t *badgerTxn) Get(key string) ([]byte, bool, error) {
	if t.done {
		return nil, false, ErrTxnDone
	}
	item, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "badger get")
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "badger value")
	}
	return val, true, nil
}

func (t *badgerTxn) Set(key string, value []byte) error {
	if t.done {
		return ErrTxnDone
	}
	err := t.txn.Set([]byte(key), cloneBytes(value))
	if errors.Is(err, badger.ErrReadOnlyTxn) {
		return ErrReadOnly
	}
	return errors.Wrap(err, "badger set")
}

func (t *badgerTxn) Delete(key string) error {
	if t.done {
		return ErrTxnDone
	}
	err := t.txn.Delete([]byte(key))
	if errors.Is(err, badger.ErrReadOnlyTxn) {
		return ErrReadOnly
	}
	return errors.Wrap(err, "badger delete")
}

func (t *badgerTxn) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	return errors.Wrap(t.txn.Commit(), "badger commit")
}

func (t *badgerTxn) Discard() {
	t.done = true
	t.txn.Discard()
}

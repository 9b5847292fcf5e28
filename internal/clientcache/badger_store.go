package clientcache

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "clientcache/"

// BadgerBlobStore keeps families in an embedded badger database.
type BadgerBlobStore struct {
	db *badger.DB
}

// OpenBadger opens a badger store at path. An empty path runs in memory.
func OpenBadger(path string) (*BadgerBlobStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerBlobStore{db: db}, nil
}

func (b *BadgerBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (b *BadgerBlobStore) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+key), value)
	})
}

func (b *BadgerBlobStore) Clear(context.Context) error {
	return b.db.DropPrefix([]byte(badgerPrefix))
}

func (b *BadgerBlobStore) Close() error {
	return b.db.Close()
}

package db

import (
	"context"

	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys"
)

type contextKey struct {
	db *DB
}

func withTxn(ctx context.Context, t *txn) context.Context {
	return context.WithValue(ctx, contextKey{db: t.db}, t)
}

// txn returns the transaction active on ctx for this
// DB or nil if there is none
func (db *DB) txn(ctx context.Context) *txn {
	t, ok := ctx.Value(contextKey{db: db}).(*txn)

	if !ok || t.closed {
		return nil
	}

	return t
}

type check struct {
	key     keys.Key
	version kv.Version
}

type write struct {
	key   keys.Key
	value []byte
	// delete is true for staged deletes
	delete bool
}

// txn is the state of one attempt of an atomic operation.
// It collects version checks from reads and staged writes
// until the attempt ends. A fresh txn is created for every
// attempt.
type txn struct {
	db      *DB
	checks  []check
	checked map[string]kv.Version
	writes  []write
	closed  bool
}

func newTxn(db *DB) *txn {
	return &txn{db: db, checked: map[string]kv.Version{}}
}

// check pins key to version. Checking the same key twice
// with the same version has no additional effect.
func (t *txn) check(key keys.Key, version kv.Version) {
	if v, ok := t.checked[string(key)]; ok && v.Equal(version) {
		return
	}

	t.checked[string(key)] = version
	t.checks = append(t.checks, check{key: key, version: version})
}

func (t *txn) set(key keys.Key, value []byte) {
	t.writes = append(t.writes, write{key: key, value: value})
}

func (t *txn) delete(key keys.Key) {
	t.writes = append(t.writes, write{key: key, delete: true})
}

func (t *txn) close() {
	t.closed = true
}

// batch materializes the transaction as a store batch
func (t *txn) batch(store kv.Store) kv.Batch {
	batch := store.Atomic()

	for _, c := range t.checks {
		batch = batch.Check(c.key, c.version)
	}

	for _, w := range t.writes {
		if w.delete {
			batch = batch.Delete(w.key)
		} else {
			batch = batch.Set(w.key, w.value)
		}
	}

	return batch
}

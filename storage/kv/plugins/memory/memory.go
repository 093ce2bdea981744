// Package memory implements an in-memory kv.Store
// backed by a sorted tree map. It is mostly useful for
// tests and for short-lived databases.
package memory

import (
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys"
)

const (
	// DriverName is the name of this plugin
	DriverName = "memory"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&MemoryPlugin{},
	}
}

var _ kv.Plugin = (*MemoryPlugin)(nil)

// MemoryPlugin builds memory stores. It takes no options.
type MemoryPlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *MemoryPlugin) Name() string {
	return DriverName
}

// NewStore implements kv.Plugin.NewStore
func (plugin *MemoryPlugin) NewStore(options kv.PluginOptions) (kv.Store, error) {
	return New(), nil
}

// NewTempStore implements kv.Plugin.NewTempStore
func (plugin *MemoryPlugin) NewTempStore() (kv.Store, error) {
	return New(), nil
}

type entry struct {
	value   []byte
	version kv.Version
}

var _ kv.Store = (*MemoryStore)(nil)

// MemoryStore is a kv.Store that keeps everything
// in memory. Versions are drawn from a single counter
// that is bumped on every write.
type MemoryStore struct {
	mu       sync.Mutex
	m        *treemap.Map
	sequence uint64
	closed   bool
}

// New creates an empty MemoryStore
func New() *MemoryStore {
	return &MemoryStore{m: treemap.NewWithStringComparator()}
}

// Get implements kv.Store.Get
func (store *MemoryStore) Get(key keys.Key) (kv.KV, error) {
	if len(key) == 0 {
		return kv.KV{}, kv.ErrEmptyKey
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return kv.KV{}, kv.ErrClosed
	}

	return store.get(key), nil
}

// Scan implements kv.Store.Scan
func (store *MemoryStore) Scan(prefix keys.Key) (kv.Iterator, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return nil, kv.ErrClosed
	}

	rng := keys.All().Prefix(copyBytes(prefix))

	return &MemoryIterator{store: store, rng: rng, cursor: string(rng.Min)}, nil
}

// Set implements kv.Store.Set
func (store *MemoryStore) Set(key keys.Key, value []byte) error {
	return store.Atomic().Set(key, value).Commit()
}

// Delete implements kv.Store.Delete
func (store *MemoryStore) Delete(key keys.Key) error {
	return store.Atomic().Delete(key).Commit()
}

// Atomic implements kv.Store.Atomic
func (store *MemoryStore) Atomic() kv.Batch {
	return &MemoryBatch{store: store}
}

// Close implements kv.Store.Close
func (store *MemoryStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.closed = true
	store.m.Clear()

	return nil
}

func (store *MemoryStore) get(key keys.Key) kv.KV {
	v, ok := store.m.Get(string(key))

	if !ok {
		return kv.KV{Key: copyBytes(key)}
	}

	e := v.(entry)

	return kv.KV{Key: copyBytes(key), Value: copyBytes(e.value), Version: e.version}
}

func (store *MemoryStore) nextVersion() kv.Version {
	store.sequence++

	return kv.Version(keys.Uint64ToKey(store.sequence))
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

var _ kv.Batch = (*MemoryBatch)(nil)

// MemoryBatch is the batch implementation for MemoryStore
type MemoryBatch struct {
	store  *MemoryStore
	checks []check
	writes []write
	err    error
}

// Check implements kv.Batch.Check
func (batch *MemoryBatch) Check(key keys.Key, version kv.Version) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.checks = append(batch.checks, check{key: copyBytes(key), version: version})

	return batch
}

// Set implements kv.Batch.Set
func (batch *MemoryBatch) Set(key keys.Key, value []byte) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.writes = append(batch.writes, write{key: copyBytes(key), value: copyBytes(value)})

	return batch
}

// Delete implements kv.Batch.Delete
func (batch *MemoryBatch) Delete(key keys.Key) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.writes = append(batch.writes, write{key: copyBytes(key), delete: true})

	return batch
}

// Commit implements kv.Batch.Commit
func (batch *MemoryBatch) Commit() error {
	if batch.err != nil {
		return batch.err
	}

	batch.store.mu.Lock()
	defer batch.store.mu.Unlock()

	if batch.store.closed {
		return kv.ErrClosed
	}

	for _, c := range batch.checks {
		if !batch.store.get(c.key).Version.Equal(c.version) {
			return kv.ErrConflict
		}
	}

	if len(batch.writes) == 0 {
		return nil
	}

	// All writes in one batch share a version
	version := batch.store.nextVersion()

	for _, w := range batch.writes {
		if w.delete {
			batch.store.m.Remove(string(w.key))
		} else {
			batch.store.m.Put(string(w.key), entry{value: w.value, version: version})
		}
	}

	return nil
}

var _ kv.Iterator = (*MemoryIterator)(nil)

// MemoryIterator is the iterator implementation for
// MemoryStore. It doesn't hold the store lock between
// calls to Next. Instead it remembers where it left off
// and seeks to the next key on each call.
type MemoryIterator struct {
	store  *MemoryStore
	rng    keys.Range
	cursor string
	kv     kv.KV
	err    error
	done   bool
}

// Next implements kv.Iterator.Next
func (iter *MemoryIterator) Next() bool {
	if iter.done {
		return false
	}

	iter.store.mu.Lock()
	defer iter.store.mu.Unlock()

	if iter.store.closed {
		iter.err = kv.ErrClosed
		iter.done = true

		return false
	}

	k, v := iter.store.m.Ceiling(iter.cursor)

	if k == nil || !iter.rng.Contains(keys.Key(k.(string))) {
		iter.kv = kv.KV{}
		iter.done = true

		return false
	}

	key := keys.Key(k.(string))
	e := v.(entry)
	iter.kv = kv.KV{Key: key, Value: copyBytes(e.value), Version: e.version}
	iter.cursor = string(keys.Next(key))

	return true
}

// KV implements kv.Iterator.KV
func (iter *MemoryIterator) KV() kv.KV {
	return iter.kv
}

// Error implements kv.Iterator.Error
func (iter *MemoryIterator) Error() error {
	return iter.err
}

// Close implements kv.Iterator.Close
func (iter *MemoryIterator) Close() error {
	iter.done = true

	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)

	return c
}

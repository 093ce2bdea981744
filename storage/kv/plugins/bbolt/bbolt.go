package bbolt

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys"
	"github.com/jrife/kaeru/utils/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	// DriverName is the name of this plugin
	DriverName = "bbolt"
	// scanPageSize is the number of keys an iterator
	// reads per read-only transaction
	scanPageSize = 128
	versionSize  = 8
)

var rootBucket = []byte("kaeru")

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&BBoltPlugin{},
	}
}

var _ kv.Plugin = (*BBoltPlugin)(nil)

// BBoltPlugin builds bbolt stores. It requires the "path" option.
type BBoltPlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *BBoltPlugin) Name() string {
	return DriverName
}

// NewStore implements kv.Plugin.NewStore
func (plugin *BBoltPlugin) NewStore(options kv.PluginOptions) (kv.Store, error) {
	var config BBoltStoreConfig

	if path, ok := options["path"]; !ok {
		return nil, fmt.Errorf("\"path\" is required")
	} else if pathString, ok := path.(string); !ok {
		return nil, fmt.Errorf("\"path\" must be a string")
	} else {
		config.Path = pathString
	}

	store, err := New(config)

	if err != nil {
		return nil, err
	}

	return store, nil
}

// NewTempStore implements kv.Plugin.NewTempStore
func (plugin *BBoltPlugin) NewTempStore() (kv.Store, error) {
	return plugin.NewStore(kv.PluginOptions{
		"path": fmt.Sprintf("%s/bbolt-%s", os.TempDir(), uuid.MustUUID()),
	})
}

// BBoltStoreConfig configures a BBoltStore
type BBoltStoreConfig struct {
	Path string
}

var _ kv.Store = (*BBoltStore)(nil)

// New opens or creates the bbolt database at config.Path
func New(config BBoltStoreConfig) (*BBoltStore, error) {
	db, err := bolt.Open(config.Path, 0666, nil)

	if err != nil {
		return nil, fmt.Errorf("could not open bbolt store at %s: %w", config.Path, err)
	}

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(rootBucket)

		return err
	}); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure root bucket exists: %w", err)
	}

	return &BBoltStore{db: db}, nil
}

// BBoltStore is a kv.Store that keeps all keys in a
// single bbolt bucket. Each stored value is prefixed
// with its version, which is taken from the bucket
// sequence.
type BBoltStore struct {
	db *bolt.DB
}

// Get implements kv.Store.Get
func (store *BBoltStore) Get(key keys.Key) (kv.KV, error) {
	if len(key) == 0 {
		return kv.KV{}, kv.ErrEmptyKey
	}

	result := kv.KV{Key: copyBytes(key)}

	err := store.db.View(func(txn *bolt.Tx) error {
		value, version := unpack(txn.Bucket(rootBucket).Get(key))
		result.Value = value
		result.Version = version

		return nil
	})

	if err != nil {
		return kv.KV{}, wrapError("could not read key", err)
	}

	return result, nil
}

// Scan implements kv.Store.Scan
func (store *BBoltStore) Scan(prefix keys.Key) (kv.Iterator, error) {
	rng := keys.All().Prefix(copyBytes(prefix))

	return &BBoltIterator{store: store, rng: rng, cursor: rng.Min}, nil
}

// Set implements kv.Store.Set
func (store *BBoltStore) Set(key keys.Key, value []byte) error {
	return store.Atomic().Set(key, value).Commit()
}

// Delete implements kv.Store.Delete
func (store *BBoltStore) Delete(key keys.Key) error {
	return store.Atomic().Delete(key).Commit()
}

// Atomic implements kv.Store.Atomic
func (store *BBoltStore) Atomic() kv.Batch {
	return &BBoltBatch{store: store}
}

// Close implements kv.Store.Close
func (store *BBoltStore) Close() error {
	return store.db.Close()
}

// Purge closes the store then removes its file
func (store *BBoltStore) Purge() error {
	path := store.db.Path()

	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", path, err)
	}

	return nil
}

type check struct {
	key     keys.Key
	version kv.Version
}

type write struct {
	key    keys.Key
	value  []byte
	delete bool
}

var _ kv.Batch = (*BBoltBatch)(nil)

// BBoltBatch is the batch implementation for BBoltStore.
// Nothing touches the database until Commit, which runs
// all checks and writes inside one read-write transaction.
type BBoltBatch struct {
	store  *BBoltStore
	checks []check
	writes []write
	err    error
}

// Check implements kv.Batch.Check
func (batch *BBoltBatch) Check(key keys.Key, version kv.Version) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.checks = append(batch.checks, check{key: copyBytes(key), version: version})

	return batch
}

// Set implements kv.Batch.Set
func (batch *BBoltBatch) Set(key keys.Key, value []byte) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.writes = append(batch.writes, write{key: copyBytes(key), value: copyBytes(value)})

	return batch
}

// Delete implements kv.Batch.Delete
func (batch *BBoltBatch) Delete(key keys.Key) kv.Batch {
	if len(key) == 0 {
		batch.err = kv.ErrEmptyKey
	}

	batch.writes = append(batch.writes, write{key: copyBytes(key), delete: true})

	return batch
}

// Commit implements kv.Batch.Commit
func (batch *BBoltBatch) Commit() error {
	if batch.err != nil {
		return batch.err
	}

	run := batch.store.db.Update

	// A batch without writes only needs a consistent view
	if len(batch.writes) == 0 {
		run = batch.store.db.View
	}

	err := run(func(txn *bolt.Tx) error {
		bucket := txn.Bucket(rootBucket)

		for _, c := range batch.checks {
			_, version := unpack(bucket.Get(c.key))

			if !version.Equal(c.version) {
				return kv.ErrConflict
			}
		}

		if len(batch.writes) == 0 {
			return nil
		}

		seq, err := bucket.NextSequence()

		if err != nil {
			return fmt.Errorf("could not allocate version: %w", err)
		}

		version := kv.Version(keys.Uint64ToKey(seq))

		for _, w := range batch.writes {
			if w.delete {
				if err := bucket.Delete(w.key); err != nil {
					return fmt.Errorf("could not delete key %v: %w", w.key, err)
				}

				continue
			}

			if err := bucket.Put(w.key, pack(w.value, version)); err != nil {
				return fmt.Errorf("could not put key %v: %w", w.key, err)
			}
		}

		return nil
	})

	if err == kv.ErrConflict {
		return err
	}

	if err != nil {
		return wrapError("could not commit batch", err)
	}

	return nil
}

var _ kv.Iterator = (*BBoltIterator)(nil)

// BBoltIterator is the iterator implementation for BBoltStore.
// It reads keys in pages, opening a short read-only
// transaction for each page so that no transaction is held
// open while the consumer processes keys.
type BBoltIterator struct {
	store  *BBoltStore
	rng    keys.Range
	cursor keys.Key
	page   []kv.KV
	kv     kv.KV
	err    error
	done   bool
}

// Next implements kv.Iterator.Next
func (iter *BBoltIterator) Next() bool {
	if len(iter.page) == 0 && !iter.done {
		iter.fill()
	}

	if len(iter.page) == 0 {
		iter.kv = kv.KV{}

		return false
	}

	iter.kv = iter.page[0]
	iter.page = iter.page[1:]

	return true
}

func (iter *BBoltIterator) fill() {
	err := iter.store.db.View(func(txn *bolt.Tx) error {
		cursor := txn.Bucket(rootBucket).Cursor()

		for k, v := cursor.Seek(iter.cursor); k != nil && iter.rng.Contains(k); k, v = cursor.Next() {
			if len(iter.page) == scanPageSize {
				return nil
			}

			value, version := unpack(v)
			iter.page = append(iter.page, kv.KV{Key: copyBytes(k), Value: value, Version: version})
		}

		iter.done = true

		return nil
	})

	if err != nil {
		iter.err = wrapError("could not scan keys", err)
		iter.done = true
		iter.page = nil

		return
	}

	if len(iter.page) > 0 {
		iter.cursor = keys.Next(iter.page[len(iter.page)-1].Key)
	}
}

// KV implements kv.Iterator.KV
func (iter *BBoltIterator) KV() kv.KV {
	return iter.kv
}

// Error implements kv.Iterator.Error
func (iter *BBoltIterator) Error() error {
	return iter.err
}

// Close implements kv.Iterator.Close
func (iter *BBoltIterator) Close() error {
	iter.done = true
	iter.page = nil

	return nil
}

// pack prefixes value with its version
func pack(value []byte, version kv.Version) []byte {
	packed := make([]byte, 0, versionSize+len(value))
	packed = append(packed, version...)

	return append(packed, value...)
}

// unpack splits a stored value into its payload
// and version. The result does not alias bbolt memory.
func unpack(stored []byte) ([]byte, kv.Version) {
	if len(stored) < versionSize {
		return nil, nil
	}

	return copyBytes(stored[versionSize:]), kv.Version(copyBytes(stored[:versionSize]))
}

func wrapError(wrap string, err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return kv.ErrClosed
	}

	return fmt.Errorf("%s: %w", wrap, err)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)

	return c
}

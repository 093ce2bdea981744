package kv

import (
	"bytes"
	"errors"

	"github.com/jrife/kaeru/storage/kv/keys"
)

var (
	// ErrClosed indicates that the store was closed
	ErrClosed = errors.New("store was closed")
	// ErrConflict indicates that a batch was not committed
	// because at least one of its checks failed
	ErrConflict = errors.New("batch check failed")
	// ErrEmptyKey indicates that a nil or empty key was passed
	// to an operation that requires a key
	ErrEmptyKey = errors.New("key must not be empty")
)

// PluginOptions is a generic structure to pass
// configuration to a storage plugin
type PluginOptions map[string]interface{}

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewStore returns an instance of the plugin store
	NewStore(options PluginOptions) (Store, error)
	// NewTempStore returns an instance of the plugin store
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// store without knowing how to initialize it
	NewTempStore() (Store, error)
}

// Version is an opaque stamp attached to every stored
// value. A store must assign a new version each time a key
// is written. A nil version stands for "absent".
type Version []byte

// Equal returns true if both versions are the same stamp
func (version Version) Equal(other Version) bool {
	if version == nil || other == nil {
		return version == nil && other == nil
	}

	return bytes.Equal(version, other)
}

// KV is a key-value pair along with the version
// of the value
type KV struct {
	Key     keys.Key
	Value   []byte
	Version Version
}

// Exists returns true if the pair refers to
// a stored value
func (kv KV) Exists() bool {
	return kv.Version != nil
}

// Store is a sorted key-value store supporting atomic
// conditional batches
type Store interface {
	// Get reads a key. If the key does not exist it
	// returns a KV with nil Value and Version and no error.
	// Get must return ErrEmptyKey if key is nil or empty.
	Get(key keys.Key) (KV, error)
	// Scan creates an iterator that visits every key with the
	// given prefix in ascending order. Scan is lazy: keys are
	// read as the iterator advances. Writes that happen while
	// iterating may or may not be observed.
	Scan(prefix keys.Key) (Iterator, error)
	// Set writes a key unconditionally
	Set(key keys.Key, value []byte) error
	// Delete deletes a key unconditionally. If the key doesn't
	// exist it has no effect and returns nil.
	Delete(key keys.Key) error
	// Atomic starts a new empty batch
	Atomic() Batch
	// Close closes the store. Calls made after Close
	// returns must return ErrClosed.
	Close() error
}

// Batch accumulates checks and writes that are committed
// together. A batch must only be used by one goroutine at
// a time and must not be reused after Commit.
type Batch interface {
	// Check requires key to still have version when the
	// batch commits. A nil version requires the key to be
	// absent.
	Check(key keys.Key, version Version) Batch
	// Set stages a write
	Set(key keys.Key, value []byte) Batch
	// Delete stages a delete
	Delete(key keys.Key) Batch
	// Commit applies the batch. It returns ErrConflict and
	// applies nothing if any check fails. Otherwise sets and
	// deletes are applied in the order they were staged.
	Commit() error
}

// Iterator iterates over a set of keys. It must only be
// used by one goroutine at a time.
type Iterator interface {
	// Next advances the iterator to the next key
	// A fresh iterator must call Next once to
	// advance to the first key. Next returns false
	// if there is no next key or if it encounters an
	// error.
	Next() bool
	// KV returns the current key-value pair
	KV() KV
	// Error returns the error, if any.
	Error() error
	// Close releases any resources held by the iterator
	Close() error
}

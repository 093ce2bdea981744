// Package kv defines the contract that sorted key-value
// stores must satisfy to back a kaeru database, along with
// a plugin mechanism for building those stores by name.
//
// A store is a single flat, sorted key space. Every stored
// value is stamped with a version that the store changes
// whenever the key is written. Versions are opaque: consumers
// compare them for equality and nothing else.
//
// Writes that must happen together are collected in a Batch.
// A batch carries a set of checks, each pinning a key to the
// version the consumer last observed, followed by sets and
// deletes. Commit applies the whole batch or nothing at all.
// If any check no longer holds Commit returns ErrConflict and
// leaves the store untouched; it is then up to the consumer to
// re-read and try again. This is the only concurrency control
// the store offers. Stores never hold locks on behalf of a
// consumer between calls.
//
//   batch := store.Atomic()
//   batch.Check(key, observed.Version)
//   batch.Set(key, newValue)
//
//   if err := batch.Commit(); err == kv.ErrConflict {
//     // someone else wrote key first
//   }
package kv

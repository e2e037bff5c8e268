// Package kv is the byte-oriented key-value store the service persists to.
//
// Keys and values are opaque bytes. Every backend offers the same contract:
//   - Get returns a copy of the stored value and whether the key exists
//   - Insert overwrites and returns the previous value, if any
//   - ApplyBatch applies an ordered list of inserts atomically
//   - Clear removes every key
//
// Backends:
//   - memory: map guarded by a mutex, for tests and dry runs
//   - bolt:   single-file bbolt database with one bucket (default)
//   - badger: LSM directory, or fully in-memory when no path is given
//   - sqlite: single kv table in WAL mode
//
// All backend failures are returned as *Error so callers can tell storage
// problems apart from domain errors.
package kv

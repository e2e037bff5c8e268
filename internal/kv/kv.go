package kv

import (
	"context"
	"errors"
	"fmt"
)

// Store is the narrow persistence interface consumed by the service.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Insert(ctx context.Context, key, value []byte) (prev []byte, existed bool, err error)
	ApplyBatch(ctx context.Context, b *Batch) error
	Clear(ctx context.Context) error
	Close() error
}

// Op is a single insert within a batch.
type Op struct {
	Key   []byte
	Value []byte
}

// Batch is an ordered list of inserts applied atomically.
// When a key appears more than once the last insert wins.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Insert queues key=value. Both slices are copied.
func (b *Batch) Insert(key, value []byte) *Batch {
	b.ops = append(b.ops, Op{Key: clone(key), Value: clone(value)})
	return b
}

// Len returns the number of queued inserts.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// Ops returns the queued inserts in order.
func (b *Batch) Ops() []Op {
	if b == nil {
		return nil
	}
	return b.ops
}

// ErrEmptyKey is returned when a zero-length key is written or read.
var ErrEmptyKey = errors.New("empty key")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Error wraps a backend failure with the operation and backend name.
type Error struct {
	Op      string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("kv %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is or wraps a kv Error.
func IsStoreError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Backend: backend, Err: err}
}

// checkArgs validates the context and keys of a call.
func checkArgs(ctx context.Context, keys ...[]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, k := range keys {
		if len(k) == 0 {
			return ErrEmptyKey
		}
	}
	return nil
}

func batchKeys(b *Batch) [][]byte {
	if b == nil {
		return nil
	}
	keys := make([][]byte, len(b.ops))
	for i, op := range b.ops {
		keys[i] = op.Key
	}
	return keys
}

// clone returns a non-nil copy of p.
func clone(p []byte) []byte {
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

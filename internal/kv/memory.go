package kv

import (
	"context"
	"sync"
)

// BackendMemory is the name of the in-memory backend.
const BackendMemory = "memory"

// Memory is a map-backed Store. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendMemory, "get", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, wrap(BackendMemory, "get", ErrClosed)
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (m *Memory) Insert(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendMemory, "insert", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, wrap(BackendMemory, "insert", ErrClosed)
	}
	prev, existed := m.data[string(key)]
	m.data[string(key)] = clone(value)
	if !existed {
		return nil, false, nil
	}
	return prev, true, nil
}

func (m *Memory) ApplyBatch(ctx context.Context, b *Batch) error {
	if err := checkArgs(ctx, batchKeys(b)...); err != nil {
		return wrap(BackendMemory, "apply_batch", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrap(BackendMemory, "apply_batch", ErrClosed)
	}
	for _, op := range b.Ops() {
		m.data[string(op.Key)] = clone(op.Value)
	}
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap(BackendMemory, "clear", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrap(BackendMemory, "clear", ErrClosed)
	}
	m.data = make(map[string][]byte)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

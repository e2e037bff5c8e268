package kv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BackendBolt is the name of the bbolt backend.
const BackendBolt = "bolt"

var boltBucket = []byte("tradewit")

// Bolt is a Store backed by a single bbolt file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens or creates the bbolt database at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, wrap(BackendBolt, "open", fmt.Errorf("path is required"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap(BackendBolt, "open", fmt.Errorf("mkdir store path: %w", err))
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, wrap(BackendBolt, "open", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, wrap(BackendBolt, "open", fmt.Errorf("create bucket: %w", err))
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendBolt, "get", err)
	}
	var (
		out   []byte
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		out, found = boltLookup(tx.Bucket(boltBucket), key)
		return nil
	})
	if err != nil {
		return nil, false, wrap(BackendBolt, "get", err)
	}
	return out, found, nil
}

func (s *Bolt) Insert(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendBolt, "insert", err)
	}
	var (
		prev    []byte
		existed bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		prev, existed = boltLookup(b, key)
		return b.Put(key, clone(value))
	})
	if err != nil {
		return nil, false, wrap(BackendBolt, "insert", err)
	}
	return prev, existed, nil
}

func (s *Bolt) ApplyBatch(ctx context.Context, batch *Batch) error {
	if err := checkArgs(ctx, batchKeys(batch)...); err != nil {
		return wrap(BackendBolt, "apply_batch", err)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for _, op := range batch.Ops() {
			if err := b.Put(op.Key, op.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(BackendBolt, "apply_batch", err)
}

func (s *Bolt) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap(BackendBolt, "clear", err)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(boltBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(boltBucket)
		return err
	})
	return wrap(BackendBolt, "clear", err)
}

func (s *Bolt) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return wrap(BackendBolt, "close", s.db.Close())
}

// boltLookup distinguishes a missing key from an empty value, which
// Bucket.Get cannot. The returned slice is a copy.
func boltLookup(b *bolt.Bucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return clone(v), true
}

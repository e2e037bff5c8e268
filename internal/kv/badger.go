package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BackendBadger is the name of the badger backend.
const BackendBadger = "badger"

// Badger is a Store backed by a badger LSM tree.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens the badger directory at path. An empty path opens a
// purely in-memory instance. A nil logger silences badger's own logging.
func OpenBadger(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if strings.TrimSpace(path) == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, wrap(BackendBadger, "open", err)
	}
	return &Badger{db: db}, nil
}

func (s *Badger) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendBadger, "get", err)
	}
	var (
		out   []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, found, err = badgerLookup(txn, key)
		return err
	})
	if err != nil {
		return nil, false, wrap(BackendBadger, "get", err)
	}
	return out, found, nil
}

func (s *Badger) Insert(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendBadger, "insert", err)
	}
	var (
		prev    []byte
		existed bool
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		prev, existed, err = badgerLookup(txn, key)
		if err != nil {
			return err
		}
		return txn.Set(clone(key), clone(value))
	})
	if err != nil {
		return nil, false, wrap(BackendBadger, "insert", err)
	}
	return prev, existed, nil
}

func (s *Badger) ApplyBatch(ctx context.Context, batch *Batch) error {
	if err := checkArgs(ctx, batchKeys(batch)...); err != nil {
		return wrap(BackendBadger, "apply_batch", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, op := range batch.Ops() {
			if err := txn.Set(op.Key, op.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(BackendBadger, "apply_batch", err)
}

func (s *Badger) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap(BackendBadger, "clear", err)
	}
	return wrap(BackendBadger, "clear", s.db.DropAll())
}

func (s *Badger) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return wrap(BackendBadger, "close", s.db.Close())
}

func badgerLookup(txn *badger.Txn, key []byte) ([]byte, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(badgerMessage(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(badgerMessage(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(badgerMessage(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(badgerMessage(format, args...))
}

func badgerMessage(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

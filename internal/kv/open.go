package kv

import (
	"fmt"
	"log/slog"
)

// Config selects and locates a backend.
type Config struct {
	Backend string
	Path    string
	Logger  *slog.Logger
}

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendBolt, BackendBadger, BackendSQLite}

// Open opens the store described by cfg.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendBolt, "":
		return OpenBolt(cfg.Path)
	case BackendBadger:
		return OpenBadger(cfg.Path, cfg.Logger)
	case BackendSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, &Error{Op: "open", Backend: cfg.Backend, Err: fmt.Errorf("unknown backend %q", cfg.Backend)}
	}
}

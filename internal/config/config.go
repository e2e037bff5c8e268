// Package config loads tradewit settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tradewit/internal/kv"
)

// Environment variables that override the file.
const (
	EnvStoreBackend = "TRADEWIT_STORE_BACKEND"
	EnvStorePath    = "TRADEWIT_STORE_PATH"
	EnvLogLevel     = "TRADEWIT_LOG_LEVEL"
	EnvLogFormat    = "TRADEWIT_LOG_FORMAT"
	EnvLogFile      = "TRADEWIT_LOG_FILE"
	EnvTraceOTLP    = "TRADEWIT_TRACE_ENDPOINT"
)

// DefaultStorePath is the bolt file used when no path is configured.
const DefaultStorePath = "tradewit.db"

// Config is the application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Report ReportConfig `yaml:"report"`
	Trace  TraceConfig  `yaml:"trace"`
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory, bolt, badger or sqlite
	Path    string `yaml:"path"`    // file or directory; unused by memory
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	// File enables rotated file output in addition to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ReportConfig holds the decimal scales used when rendering amounts.
type ReportConfig struct {
	AmountScale int32 `yaml:"amount_scale"`
	StrikeScale int32 `yaml:"strike_scale"`
}

// TraceConfig controls span export. An empty Endpoint leaves tracing on
// the global provider, which is a no-op unless the embedding process sets one.
type TraceConfig struct {
	Endpoint    string `yaml:"endpoint"` // OTLP/gRPC collector, host:port
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: kv.BackendBolt,
			Path:    DefaultStorePath,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Report: ReportConfig{
			AmountScale: 2,
			StrikeScale: 6,
		},
		Trace: TraceConfig{
			Insecure:    true,
			ServiceName: "tradewit",
		},
	}
}

// Load reads path on top of the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from TRADEWIT_* variables that are set and
// non-empty.
func (c *Config) ApplyEnv() {
	c.Store.Backend = getEnv(EnvStoreBackend, c.Store.Backend)
	c.Store.Path = getEnv(EnvStorePath, c.Store.Path)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.Log.File = getEnv(EnvLogFile, c.Log.File)
	c.Trace.Endpoint = getEnv(EnvTraceOTLP, c.Trace.Endpoint)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(kv.Backends, c.Store.Backend) {
		return fmt.Errorf("store.backend: unknown backend %q (want one of %s)",
			c.Store.Backend, strings.Join(kv.Backends, ", "))
	}
	if c.Store.Path == "" && (c.Store.Backend == kv.BackendBolt || c.Store.Backend == kv.BackendSQLite) {
		return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	if c.Report.AmountScale < 0 || c.Report.StrikeScale < 0 {
		return fmt.Errorf("report scales must not be negative")
	}
	if c.Trace.Endpoint != "" && c.Trace.ServiceName == "" {
		return fmt.Errorf("trace.service_name is required when trace.endpoint is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

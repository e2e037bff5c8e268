package service

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/tradewit/internal/ids"
	"github.com/roach88/tradewit/internal/kv"
)

const tracerName = "github.com/roach88/tradewit/internal/service"

// Clock supplies witness timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Service is the workflow orchestrator. It is safe for concurrent use to
// the extent the underlying store is.
type Service struct {
	store  kv.Store
	clock  Clock
	gen    ids.Generator
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator overrides the trade ID generator.
func WithIDGenerator(g ids.Generator) Option {
	return func(s *Service) {
		s.gen = g
	}
}

// WithLogger sets the structured logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTracer sets the tracer used for per-operation spans. The global
// provider is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New creates a service over store.
func New(store kv.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  SystemClock{},
		gen:    ids.UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

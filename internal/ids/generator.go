package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces opaque, time-ordered raw identifiers.
type Generator interface {
	Generate() ([]byte, error)
}

// UUIDv7Generator generates time-sortable UUIDv7 values.
//
// UUIDv7 embeds a millisecond timestamp in the most significant bits, so
// encoded IDs sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns the 16 raw bytes of a fresh UUIDv7.
func (UUIDv7Generator) Generate() ([]byte, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate uuidv7: %w", err)
	}
	return u[:], nil
}

// FixedGenerator returns predetermined raw IDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	values [][]byte
	idx    int
}

// NewFixedGenerator creates a generator that returns values in order.
//
//	gen := NewFixedGenerator(a, b)
//	gen.Generate() // a
//	gen.Generate() // b
//	gen.Generate() // panic: all values exhausted
func NewFixedGenerator(values ...[]byte) *FixedGenerator {
	return &FixedGenerator{values: values}
}

// NewFixedUUIDGenerator is NewFixedGenerator over parsed UUID strings.
// Panics if any string is not a valid UUID.
func NewFixedUUIDGenerator(values ...string) *FixedGenerator {
	raws := make([][]byte, len(values))
	for i, v := range values {
		u := uuid.MustParse(v)
		raws[i] = u[:]
	}
	return NewFixedGenerator(raws...)
}

// Generate returns a copy of the next predetermined value.
//
// Panics once all values are consumed so a test that mints more IDs than it
// declared fails loudly.
func (g *FixedGenerator) Generate() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.values) {
		panic("FixedGenerator: all values exhausted")
	}
	v := append([]byte(nil), g.values[g.idx]...)
	g.idx++
	return v, nil
}

// Remaining reports how many values have not been handed out yet.
func (g *FixedGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.values) - g.idx
}

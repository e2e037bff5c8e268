package ids

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_UsesPrefix(t *testing.T) {
	id, err := New(UUIDv7Generator{}, TradePrefix)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "trade_1"), "got %s", id)
	assert.Greater(t, len(id), 10)
}

func TestEncode_EmptyPrefixFails(t *testing.T) {
	_, err := Encode("", []byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPrefix))
}

func TestEncode_RejectsNonPrintablePrefix(t *testing.T) {
	_, err := Encode("bad prefix", []byte{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPrefix))
}

func TestEncode_EmptyRawFails(t *testing.T) {
	_, err := Encode(UserPrefix, nil)
	require.Error(t, err)
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := New(UUIDv7Generator{}, TradePrefix)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNew_DifferentPrefixesDiffer(t *testing.T) {
	tradeID, err := New(UUIDv7Generator{}, TradePrefix)
	require.NoError(t, err)
	userID, err := New(UUIDv7Generator{}, UserPrefix)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tradeID, TradePrefix))
	assert.True(t, strings.HasPrefix(userID, UserPrefix))
	assert.NotEqual(t, tradeID, userID)
}

func TestDecode_RoundTrip(t *testing.T) {
	raw := uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")

	id, err := Encode(EntityPrefix, raw[:])
	require.NoError(t, err)

	prefix, got, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, EntityPrefix, prefix)
	assert.Equal(t, raw[:], got)
}

func TestDecode_RejectsCorruptedChecksum(t *testing.T) {
	id, err := New(UUIDv7Generator{}, TradePrefix)
	require.NoError(t, err)

	// Flip the final checksum character to another charset member.
	last := id[len(id)-1]
	repl := byte('q')
	if last == 'q' {
		repl = 'p'
	}
	corrupted := id[:len(id)-1] + string(repl)

	_, _, err = Decode(corrupted)
	require.Error(t, err)
}

func TestHasPrefix(t *testing.T) {
	id, err := New(UUIDv7Generator{}, UserPrefix)
	require.NoError(t, err)

	assert.True(t, HasPrefix(id, UserPrefix))
	assert.False(t, HasPrefix(id, TradePrefix))
	assert.False(t, HasPrefix("not-an-id", UserPrefix))
}

func TestUUIDv7Generator_TimeOrdered(t *testing.T) {
	gen := UUIDv7Generator{}
	a, err := gen.Generate()
	require.NoError(t, err)
	b, err := gen.Generate()
	require.NoError(t, err)

	require.Len(t, a, 16)
	assert.Equal(t, byte(7), a[6]>>4, "version nibble")
	// The 48-bit millisecond prefix never decreases.
	assert.LessOrEqual(t, string(a[:6]), string(b[:6]))
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator([]byte{1}, []byte{2})

	a, err := gen.Generate()
	require.NoError(t, err)
	b, err := gen.Generate()
	require.NoError(t, err)

	assert.Equal(t, []byte{1}, a)
	assert.Equal(t, []byte{2}, b)
	assert.Equal(t, 0, gen.Remaining())
	assert.Panics(t, func() { _, _ = gen.Generate() })
}

func TestFixedGenerator_ReturnsCopies(t *testing.T) {
	src := []byte{9, 9}
	gen := NewFixedGenerator(src)

	got, err := gen.Generate()
	require.NoError(t, err)
	got[0] = 0

	assert.Equal(t, []byte{9, 9}, src)
}

func TestFixedGenerator_ConcurrentUse(t *testing.T) {
	values := make([][]byte, 50)
	for i := range values {
		values[i] = []byte{byte(i)}
	}
	gen := NewFixedGenerator(values...)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[byte]bool)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := gen.Generate()
			mu.Lock()
			seen[v[0]] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestNewFixedUUIDGenerator(t *testing.T) {
	gen := NewFixedUUIDGenerator("01890a5d-ac96-774b-bcce-b302099a8057")
	id, err := New(gen, TradePrefix)
	require.NoError(t, err)

	_, raw, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, "01890a5d-ac96-774b-bcce-b302099a8057", uuid.Must(uuid.FromBytes(raw)).String())
}

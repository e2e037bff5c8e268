package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tradewit/internal/ids"
	"github.com/roach88/tradewit/internal/trade"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, 0)
	assert.True(t, clock.Now().Equal(DefaultEpoch))
	assert.True(t, clock.Now().Equal(DefaultEpoch.Add(time.Second)))
	assert.Equal(t, int64(2), clock.Calls())
}

func TestDeterministicClock_CustomStep(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewDeterministicClock(start, time.Minute)

	assert.True(t, clock.Now().Equal(start))
	assert.True(t, clock.Now().Equal(start.Add(time.Minute)))
	assert.True(t, clock.Now().Equal(start.Add(2*time.Minute)))
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, 0)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.True(t, clock.Now().Equal(DefaultEpoch))
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, time.Nanosecond)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				n := clock.Now().UnixNano()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every reading is unique
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestSampleDraftIsValid(t *testing.T) {
	fin, err := SampleDraft().Finalize()
	require.NoError(t, err)

	again, err := SampleDraft().Finalize()
	require.NoError(t, err)
	assert.Equal(t, fin.Hash, again.Hash)
	assert.Equal(t, trade.Buy, fin.Details.Direction())
}

func TestSequentialIDs(t *testing.T) {
	gen := SequentialIDs(3)
	assert.Equal(t, 3, gen.Remaining())

	a, err := ids.New(gen, ids.TradePrefix)
	require.NoError(t, err)
	b, err := ids.New(gen, ids.TradePrefix)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	again, err := ids.New(SequentialIDs(1), ids.TradePrefix)
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/testutil"
)

const exampleTrade = "trade_1example"

// bookedHistory builds a submit, approve, execute, book history with
// placeholder hashes so the output does not depend on encodings.
func bookedHistory(t *testing.T) (*chain.TradeContext, []service.HistoryEntry) {
	t.Helper()
	fin, err := testutil.SampleDraft().Finalize()
	require.NoError(t, err)
	details := fin.Details

	at := func(sec int) time.Time {
		return testutil.DefaultEpoch.Add(time.Duration(sec) * time.Second)
	}
	witnesses := []chain.Witness{
		chain.NewWitness(exampleTrade, testutil.Requester, at(0), chain.Submit{
			DetailsHash: "d0", RequesterID: testutil.Requester, ApproverID: testutil.Approver,
		}),
		chain.NewWitness(exampleTrade, testutil.Approver, at(1), chain.Approve{}),
		chain.NewWitness(exampleTrade, testutil.Executor, at(2), chain.SendToExecute{}),
		chain.NewWitness(exampleTrade, testutil.Executor, at(3), chain.Book{Strike: 1_000_040}),
	}

	tc := chain.NewWith(exampleTrade)
	entries := make([]service.HistoryEntry, len(witnesses))
	for i, w := range witnesses {
		tc.InsertWitness(w)
		entries[i] = service.HistoryEntry{
			Index:       i,
			Witness:     w,
			WitnessHash: "w" + string(rune('0'+i)),
			State:       tc.CurrentState(),
		}
	}
	entries[0].DetailsHash = "d0"
	entries[0].Details = &details
	return tc, entries
}

func TestTextGolden(t *testing.T) {
	tc, entries := bookedHistory(t)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, tc, entries, DefaultOptions()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "booked_text", buf.Bytes())
}

func TestJSONGolden(t *testing.T) {
	_, entries := bookedHistory(t)

	out, err := JSON(entries)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "booked_json", out)
}

func TestTextShowHashes(t *testing.T) {
	tc, entries := bookedHistory(t)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, tc, entries, Options{AmountScale: 0, StrikeScale: 0, ShowHashes: true}))

	out := buf.String()
	assert.Contains(t, out, "WITNESS")
	assert.Contains(t, out, "details=d0")
	assert.Contains(t, out, "Buy 1000000 USD / 790000 GBP")
	assert.Contains(t, out, "strike=1000040")
}

func TestJSONDeterministic(t *testing.T) {
	_, entries := bookedHistory(t)

	a, err := JSON(entries)
	require.NoError(t, err)
	b, err := JSON(entries)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	empty, err := JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestJSONRejectsMissingAction(t *testing.T) {
	_, err := JSON([]service.HistoryEntry{{Witness: chain.Witness{TradeID: exampleTrade}}})
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		v     uint64
		scale int32
		want  string
	}{
		{0, 2, "0.00"},
		{5, 2, "0.05"},
		{1_000_000, 2, "10000.00"},
		{1_000_040, 6, "1.000040"},
		{42, 0, "42"},
		{42, -3, "42"},
		{18446744073709551615, 2, "184467440737095516.15"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(tt.v, tt.scale))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-06-01", formatDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-01T12:30:00Z", formatDate(time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)))
}

func TestDetailsText(t *testing.T) {
	fin, err := testutil.SampleDraft().Strike(1_265_000).Finalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Details(&buf, fin.Details, "abc123", DefaultOptions()))

	want := "hash            abc123\n" +
		"trading_entity  entity_1trading\n" +
		"counter_party   entity_1counter\n" +
		"direction       Buy\n" +
		"notional        10000.00 USD\n" +
		"underlying      7900.00 GBP\n" +
		"trade_date      2024-06-01\n" +
		"value_date      2024-06-15\n" +
		"delivery_date   2024-06-30\n" +
		"strike          1.265000\n"
	assert.Equal(t, want, buf.String())
}

func TestDetailsJSON(t *testing.T) {
	fin, err := testutil.SampleDraft().Finalize()
	require.NoError(t, err)

	out, err := DetailsJSON(fin.Details)
	require.NoError(t, err)
	assert.Equal(t,
		`{"counter_party":"entity_1counter","delivery_date":"2024-06-30T00:00:00Z","direction":"Buy",`+
			`"notional_amount":1000000,"notional_currency":"USD","trade_date":"2024-06-01T00:00:00Z",`+
			`"trading_entity":"entity_1trading","underlying_amount":790000,"underlying_currency":"GBP",`+
			`"value_date":"2024-06-15T00:00:00Z"}`,
		string(out))
}

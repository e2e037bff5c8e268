package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tradewit/internal/testutil"
	"github.com/roach88/tradewit/internal/trade"
)

const detailsCUE = `
trading_entity:      "entity_1trading"
counter_party:       "entity_1counter"
direction:           "Buy"
notional_currency:   "USD"
notional_amount:     1000000
underlying_currency: "GBP"
underlying_amount:   790000
trade_date:          "2024-06-01"
value_date:          "2024-06-15"
delivery_date:       "2024-06-30"
`

const detailsJSON = `{
  "trading_entity": "entity_1trading",
  "counter_party": "entity_1counter",
  "direction": "Buy",
  "notional_currency": "USD",
  "notional_amount": 1000000,
  "underlying_currency": "GBP",
  "underlying_amount": 790000,
  "trade_date": "2024-06-01T00:00:00Z",
  "value_date": "2024-06-15",
  "delivery_date": "2024-06-30"
}`

const detailsYAML = `
trading_entity: entity_1trading
counter_party: entity_1counter
direction: Buy
notional_currency: USD
notional_amount: 1000000
underlying_currency: GBP
underlying_amount: 790000
trade_date: 2024-06-01
value_date: 2024-06-15
delivery_date: 2024-06-30
`

func sampleMap() map[string]any {
	return map[string]any{
		"trading_entity":      "entity_1trading",
		"counter_party":       "entity_1counter",
		"direction":           "Buy",
		"notional_currency":   "USD",
		"notional_amount":     1000000,
		"underlying_currency": "GBP",
		"underlying_amount":   790000,
		"trade_date":          "2024-06-01",
		"value_date":          "2024-06-15",
		"delivery_date":       "2024-06-30",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleHash(t *testing.T) string {
	t.Helper()
	fin, err := testutil.SampleDraft().Finalize()
	require.NoError(t, err)
	return fin.Hash
}

func TestLoadFileFormatsAgree(t *testing.T) {
	want := sampleHash(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"cue", "details.cue", detailsCUE},
		{"json", "details.json", detailsJSON},
		{"yaml", "details.yaml", detailsYAML},
		{"yml", "details.yml", detailsYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := LoadFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			fin, err := d.Finalize()
			require.NoError(t, err)
			assert.Equal(t, want, fin.Hash)
		})
	}
}

func TestFromMapMatchesSample(t *testing.T) {
	d, err := FromMap(sampleMap())
	require.NoError(t, err)

	fin, err := d.Finalize()
	require.NoError(t, err)
	assert.Equal(t, sampleHash(t), fin.Hash)
}

func TestFromMapStrike(t *testing.T) {
	m := sampleMap()
	m["strike"] = 1265000

	d, err := FromMap(m)
	require.NoError(t, err)
	fin, err := d.Finalize()
	require.NoError(t, err)

	strike, ok := fin.Details.Strike()
	assert.True(t, ok)
	assert.Equal(t, uint64(1265000), strike)
}

func TestFromMapSchemaViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing field", func(m map[string]any) { delete(m, "counter_party") }},
		{"empty entity", func(m map[string]any) { m["trading_entity"] = "" }},
		{"bad direction", func(m map[string]any) { m["direction"] = "Hold" }},
		{"bad currency", func(m map[string]any) { m["notional_currency"] = "JPY" }},
		{"negative amount", func(m map[string]any) { m["notional_amount"] = -5 }},
		{"amount as string", func(m map[string]any) { m["notional_amount"] = "100" }},
		{"bad date", func(m map[string]any) { m["value_date"] = "June 15" }},
		{"unknown field", func(m map[string]any) { m["desk"] = "fx" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleMap()
			tt.mutate(m)

			_, err := FromMap(m)
			require.Error(t, err)
			assert.True(t, IsIntakeError(err))
			assert.Equal(t, CodeSchemaViolation, CodeOf(err))
		})
	}
}

func TestZeroAmountIsADomainError(t *testing.T) {
	m := sampleMap()
	m["underlying_amount"] = 0

	d, err := FromMap(m)
	require.NoError(t, err)

	_, err = d.Finalize()
	require.Error(t, err)
	assert.Equal(t, trade.CodeZeroAmount, trade.ValidationCodeOf(err))
}

func TestZeroStrikeAccepted(t *testing.T) {
	m := sampleMap()
	m["strike"] = 0

	d, err := FromMap(m)
	require.NoError(t, err)
	fin, err := d.Finalize()
	require.NoError(t, err)

	strike, ok := fin.Details.Strike()
	assert.True(t, ok)
	assert.Zero(t, strike)
}

func TestDomainRulesStayInTrade(t *testing.T) {
	m := sampleMap()
	m["trade_date"] = "2024-07-01"

	d, err := FromMap(m)
	require.NoError(t, err)

	_, err = d.Finalize()
	require.Error(t, err)
	assert.Equal(t, trade.CodeDateValidation, trade.ValidationCodeOf(err))
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, CodeReadFailed, CodeOf(err))

	_, err = LoadFile(writeFile(t, "details.toml", "x = 1"))
	assert.Equal(t, CodeUnsupportedFormat, CodeOf(err))

	_, err = LoadFile(writeFile(t, "details.json", "{not json"))
	assert.Equal(t, CodeParseFailed, CodeOf(err))

	_, err = LoadFile(writeFile(t, "details.yaml", "a: [1, 2"))
	assert.Equal(t, CodeParseFailed, CodeOf(err))
}

func TestCUEErrorCarriesPosition(t *testing.T) {
	path := writeFile(t, "details.cue", "trading_entity: \"entity_1trading\n")

	_, err := LoadFile(path)
	require.Error(t, err)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, CodeParseFailed, ie.Code)
	require.True(t, ie.Pos.IsValid())
	assert.Equal(t, 1, ie.Pos.Line())
	assert.Contains(t, err.Error(), "details.cue")
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, trade.Date(2024, 6, 1, 0, 0, 0), got)

	got, err = parseDate("2024-06-01T11:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, trade.Date(2024, 6, 1, 9, 30, 0), got)

	_, err = parseDate("01/06/2024")
	assert.Error(t, err)
}

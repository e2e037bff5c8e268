package report

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Default scales for rendering integer minor units.
const (
	DefaultAmountScale = 2
	DefaultStrikeScale = 6
)

// Options controls text rendering.
type Options struct {
	// AmountScale is the number of minor-unit digits in amounts.
	AmountScale int32
	// StrikeScale is the number of fractional digits in strikes.
	StrikeScale int32
	// ShowHashes adds witness and details hash prefixes to each line.
	ShowHashes bool
}

// DefaultOptions returns the standard scales without hashes.
func DefaultOptions() Options {
	return Options{AmountScale: DefaultAmountScale, StrikeScale: DefaultStrikeScale}
}

// FormatUnits renders an integer amount of minor units as a fixed-point
// decimal, e.g. FormatUnits(1_000_040, 6) == "1.000040".
func FormatUnits(v uint64, scale int32) string {
	if scale < 0 {
		scale = 0
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -scale).StringFixed(scale)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.UTC().Format(time.DateOnly)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

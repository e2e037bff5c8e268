package trade

import (
	"fmt"
	"strings"
)

// Direction is the side of the trade. The numeric values are the wire values.
type Direction uint8

const (
	Buy  Direction = 0
	Sell Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// ParseDirection parses "Buy" or "Sell", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Currency is a settlement currency. The numeric values are the wire values.
type Currency uint8

const (
	USD Currency = 0
	GBP Currency = 1
	EUR Currency = 2
)

func (c Currency) String() string {
	switch c {
	case USD:
		return "USD"
	case GBP:
		return "GBP"
	case EUR:
		return "EUR"
	default:
		return fmt.Sprintf("Currency(%d)", uint8(c))
	}
}

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c <= EUR
}

// ParseCurrency parses an ISO code such as "USD", case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USD":
		return USD, nil
	case "GBP":
		return GBP, nil
	case "EUR":
		return EUR, nil
	default:
		return 0, fmt.Errorf("unknown currency %q", s)
	}
}

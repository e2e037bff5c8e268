package ids

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Well-known prefixes.
const (
	TradePrefix  = "trade_"
	UserPrefix   = "user_"
	EntityPrefix = "entity_"
)

// ErrInvalidPrefix is returned when a human-readable prefix cannot be used.
var ErrInvalidPrefix = errors.New("invalid identifier prefix")

// Encode renders raw under prefix using bech32m.
func Encode(prefix string, raw []byte) (string, error) {
	if err := checkPrefix(prefix); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("encode %q: empty identifier", prefix)
	}

	groups, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("encode %q: convert bits: %w", prefix, err)
	}
	s, err := bech32.EncodeM(strings.ToLower(prefix), groups)
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", prefix, err)
	}
	return s, nil
}

// Decode splits an encoded identifier into its prefix and raw bytes.
// Only bech32m checksums are accepted.
func Decode(s string) (prefix string, raw []byte, err error) {
	hrp, groups, version, err := bech32.DecodeGeneric(s)
	if err != nil {
		return "", nil, fmt.Errorf("decode %q: %w", s, err)
	}
	if version != bech32.VersionM {
		return "", nil, fmt.Errorf("decode %q: not a bech32m identifier", s)
	}
	raw, err = bech32.ConvertBits(groups, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("decode %q: convert bits: %w", s, err)
	}
	return hrp, raw, nil
}

// New generates a fresh raw ID and encodes it under prefix.
func New(gen Generator, prefix string) (string, error) {
	raw, err := gen.Generate()
	if err != nil {
		return "", err
	}
	return Encode(prefix, raw)
}

// HasPrefix reports whether s is a valid identifier minted under prefix.
func HasPrefix(s, prefix string) bool {
	hrp, _, err := Decode(s)
	return err == nil && hrp == strings.ToLower(prefix)
}

func checkPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c < 33 || c > 126 {
			return fmt.Errorf("%w: %q has byte 0x%02x at %d", ErrInvalidPrefix, prefix, c, i)
		}
	}
	return nil
}

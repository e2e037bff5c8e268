package trade

import (
	"fmt"
	"time"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/codec"
)

// TradeDetails is a validated, immutable trade details record.
// Values are only produced by Finalize and DecodeDetails.
type TradeDetails struct {
	tradingEntity      string
	counterParty       string
	direction          Direction
	notionalCurrency   Currency
	notionalAmount     uint64
	underlyingCurrency Currency
	underlyingAmount   uint64
	tradeDate          time.Time
	valueDate          time.Time
	deliveryDate       time.Time
	strike             *uint64
}

// detailsWire is the integer-keyed encoding of TradeDetails.
type detailsWire struct {
	TradingEntity      string    `cbor:"0,keyasint"`
	CounterParty       string    `cbor:"1,keyasint"`
	Direction          Direction `cbor:"2,keyasint"`
	NotionalCurrency   Currency  `cbor:"3,keyasint"`
	NotionalAmount     uint64    `cbor:"4,keyasint"`
	UnderlyingCurrency Currency  `cbor:"5,keyasint"`
	UnderlyingAmount   uint64    `cbor:"6,keyasint"`
	TradeDate          int64     `cbor:"7,keyasint"`
	ValueDate          int64     `cbor:"8,keyasint"`
	DeliveryDate       int64     `cbor:"9,keyasint"`
	Strike             *uint64   `cbor:"10,keyasint,omitempty"`
}

func (t TradeDetails) TradingEntity() string        { return t.tradingEntity }
func (t TradeDetails) CounterParty() string         { return t.counterParty }
func (t TradeDetails) Direction() Direction         { return t.direction }
func (t TradeDetails) NotionalCurrency() Currency   { return t.notionalCurrency }
func (t TradeDetails) NotionalAmount() uint64       { return t.notionalAmount }
func (t TradeDetails) UnderlyingCurrency() Currency { return t.underlyingCurrency }
func (t TradeDetails) UnderlyingAmount() uint64     { return t.underlyingAmount }
func (t TradeDetails) TradeDate() time.Time         { return t.tradeDate }
func (t TradeDetails) ValueDate() time.Time         { return t.valueDate }
func (t TradeDetails) DeliveryDate() time.Time      { return t.deliveryDate }

// Strike returns the strike and whether it is set.
func (t TradeDetails) Strike() (uint64, bool) {
	if t.strike == nil {
		return 0, false
	}
	return *t.strike, true
}

// Encode returns the canonical encoding of the record.
func (t TradeDetails) Encode() ([]byte, error) {
	data, err := codec.Marshal(t.wire())
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	return data, nil
}

// Hash re-derives the content hash from the canonical encoding.
func (t TradeDetails) Hash() (string, error) {
	data, err := t.Encode()
	if err != nil {
		return "", err
	}
	return HashEncoded(data), nil
}

// HashEncoded returns the content hash of encoded details bytes.
func HashEncoded(data []byte) string {
	return canonical.Digest(canonical.DomainDetails, data)
}

// Draft returns a mutable copy of the record, for building a revision.
func (t TradeDetails) Draft() *Draft {
	d := NewDraft().
		TradingEntity(t.tradingEntity).
		CounterParty(t.counterParty).
		Direction(t.direction).
		NotionalCurrency(t.notionalCurrency).
		NotionalAmount(t.notionalAmount).
		UnderlyingCurrency(t.underlyingCurrency).
		UnderlyingAmount(t.underlyingAmount).
		TradeDate(t.tradeDate).
		ValueDate(t.valueDate).
		DeliveryDate(t.deliveryDate)
	if t.strike != nil {
		d.Strike(*t.strike)
	}
	return d
}

func (t TradeDetails) wire() detailsWire {
	w := detailsWire{
		TradingEntity:      t.tradingEntity,
		CounterParty:       t.counterParty,
		Direction:          t.direction,
		NotionalCurrency:   t.notionalCurrency,
		NotionalAmount:     t.notionalAmount,
		UnderlyingCurrency: t.underlyingCurrency,
		UnderlyingAmount:   t.underlyingAmount,
		TradeDate:          ToUnixNano(t.tradeDate),
		ValueDate:          ToUnixNano(t.valueDate),
		DeliveryDate:       ToUnixNano(t.deliveryDate),
	}
	if t.strike != nil {
		s := *t.strike
		w.Strike = &s
	}
	return w
}

// DecodeDetails decodes a canonical encoding produced by Finalize.
// The decoded record is re-validated; a record that would not pass
// Finalize is reported as a decode error.
func DecodeDetails(data []byte) (TradeDetails, error) {
	var w detailsWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return TradeDetails{}, fmt.Errorf("decode details: %w", err)
	}
	if !w.Direction.Valid() {
		return TradeDetails{}, codec.Errorf("details: unknown direction %d", w.Direction)
	}
	if !w.NotionalCurrency.Valid() {
		return TradeDetails{}, codec.Errorf("details: unknown notional currency %d", w.NotionalCurrency)
	}
	if !w.UnderlyingCurrency.Valid() {
		return TradeDetails{}, codec.Errorf("details: unknown underlying currency %d", w.UnderlyingCurrency)
	}

	d := NewDraft().
		TradingEntity(w.TradingEntity).
		CounterParty(w.CounterParty).
		Direction(w.Direction).
		NotionalCurrency(w.NotionalCurrency).
		NotionalAmount(w.NotionalAmount).
		UnderlyingCurrency(w.UnderlyingCurrency).
		UnderlyingAmount(w.UnderlyingAmount).
		TradeDate(FromUnixNano(w.TradeDate)).
		ValueDate(FromUnixNano(w.ValueDate)).
		DeliveryDate(FromUnixNano(w.DeliveryDate))
	if w.Strike != nil {
		d.Strike(*w.Strike)
	}

	details, err := d.build()
	if err != nil {
		return TradeDetails{}, codec.Errorf("details: %w", err)
	}
	return details, nil
}

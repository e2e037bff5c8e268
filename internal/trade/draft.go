package trade

import (
	"fmt"
	"time"

	"github.com/roach88/tradewit/internal/ids"
)

// Draft is the mutable builder for TradeDetails. Setters return the draft
// so calls can be chained. A Draft is not safe for concurrent use.
type Draft struct {
	tradingEntity      string
	counterParty       string
	direction          *Direction
	notionalCurrency   *Currency
	notionalAmount     uint64
	underlyingCurrency *Currency
	underlyingAmount   uint64
	tradeDate          *time.Time
	valueDate          *time.Time
	deliveryDate       *time.Time
	strike             *uint64
}

// Finalized is the result of a successful validation: the frozen record,
// its content hash and the canonical bytes the hash was computed over.
type Finalized struct {
	Details TradeDetails
	Hash    string
	Encoded []byte
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

func (d *Draft) TradingEntity(id string) *Draft {
	d.tradingEntity = id
	return d
}

func (d *Draft) CounterParty(id string) *Draft {
	d.counterParty = id
	return d
}

// NewTradingEntity mints a fresh entity identifier with the given prefix
// and sets it as the trading entity.
func (d *Draft) NewTradingEntity(gen ids.Generator, prefix string) (*Draft, error) {
	id, err := ids.New(gen, prefix)
	if err != nil {
		return d, fmt.Errorf("new trading entity: %w", err)
	}
	d.tradingEntity = id
	return d, nil
}

// NewCounterParty mints a fresh entity identifier with the given prefix
// and sets it as the counterparty.
func (d *Draft) NewCounterParty(gen ids.Generator, prefix string) (*Draft, error) {
	id, err := ids.New(gen, prefix)
	if err != nil {
		return d, fmt.Errorf("new counter party: %w", err)
	}
	d.counterParty = id
	return d, nil
}

func (d *Draft) Direction(dir Direction) *Draft {
	d.direction = &dir
	return d
}

func (d *Draft) NotionalCurrency(c Currency) *Draft {
	d.notionalCurrency = &c
	return d
}

func (d *Draft) NotionalAmount(amount uint64) *Draft {
	d.notionalAmount = amount
	return d
}

func (d *Draft) UnderlyingCurrency(c Currency) *Draft {
	d.underlyingCurrency = &c
	return d
}

func (d *Draft) UnderlyingAmount(amount uint64) *Draft {
	d.underlyingAmount = amount
	return d
}

func (d *Draft) TradeDate(t time.Time) *Draft {
	t = Normalize(t)
	d.tradeDate = &t
	return d
}

func (d *Draft) ValueDate(t time.Time) *Draft {
	t = Normalize(t)
	d.valueDate = &t
	return d
}

func (d *Draft) DeliveryDate(t time.Time) *Draft {
	t = Normalize(t)
	d.deliveryDate = &t
	return d
}

func (d *Draft) Strike(rate uint64) *Draft {
	d.strike = &rate
	return d
}

// Clone returns an independent copy of the draft.
func (d *Draft) Clone() *Draft {
	c := *d
	c.direction = clonePtr(d.direction)
	c.notionalCurrency = clonePtr(d.notionalCurrency)
	c.underlyingCurrency = clonePtr(d.underlyingCurrency)
	c.tradeDate = clonePtr(d.tradeDate)
	c.valueDate = clonePtr(d.valueDate)
	c.deliveryDate = clonePtr(d.deliveryDate)
	c.strike = clonePtr(d.strike)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Finalize is shorthand for ValidateAndFinalize(d).
func (d *Draft) Finalize() (Finalized, error) {
	return ValidateAndFinalize(d)
}

// ValidateAndFinalize validates the draft, then encodes and hashes it.
// It is pure: identical drafts yield identical bytes and hashes.
//
// Checks run in a fixed order and the first failure is returned:
//  1. trading entity, counterparty
//  2. direction, notional currency, notional amount
//  3. underlying currency, underlying amount
//  4. trade, value and delivery date presence and range
//  5. trade <= value <= delivery
func ValidateAndFinalize(d *Draft) (Finalized, error) {
	if d == nil {
		return Finalized{}, invalid(CodeUnsetField, "draft", "draft is nil")
	}
	details, err := d.build()
	if err != nil {
		return Finalized{}, err
	}
	encoded, err := details.Encode()
	if err != nil {
		return Finalized{}, err
	}
	return Finalized{
		Details: details,
		Hash:    HashEncoded(encoded),
		Encoded: encoded,
	}, nil
}

// build validates the draft and returns the frozen record.
func (d *Draft) build() (TradeDetails, error) {
	if d.tradingEntity == "" {
		return TradeDetails{}, invalid(CodeInvalidEntity, "trading_entity", "trading entity is not set")
	}
	if d.counterParty == "" {
		return TradeDetails{}, invalid(CodeInvalidEntity, "counter_party", "counter party is not set")
	}
	if d.direction == nil {
		return TradeDetails{}, invalid(CodeUnsetField, "direction", "direction is not set")
	}
	if !d.direction.Valid() {
		return TradeDetails{}, invalid(CodeUnsetField, "direction", "unknown direction %d", *d.direction)
	}
	if d.notionalCurrency == nil || !d.notionalCurrency.Valid() {
		return TradeDetails{}, invalid(CodeUnsetField, "notional_currency", "notional currency is not set")
	}
	if d.notionalAmount == 0 {
		return TradeDetails{}, invalid(CodeZeroAmount, "notional_amount", "notional amount is zero")
	}
	if d.underlyingCurrency == nil || !d.underlyingCurrency.Valid() {
		return TradeDetails{}, invalid(CodeUnsetField, "underlying_currency", "underlying currency is not set")
	}
	if d.underlyingAmount == 0 {
		return TradeDetails{}, invalid(CodeZeroAmount, "underlying_amount", "underlying amount is zero")
	}

	dates := []struct {
		field string
		value *time.Time
	}{
		{"trade_date", d.tradeDate},
		{"value_date", d.valueDate},
		{"delivery_date", d.deliveryDate},
	}
	for _, dt := range dates {
		if dt.value == nil {
			return TradeDetails{}, invalid(CodeUnsetField, dt.field, "%s is not set", dt.field)
		}
		if !InRange(*dt.value) {
			return TradeDetails{}, invalid(CodeTimestampRange, dt.field,
				"%s %s is outside the representable range", dt.field, dt.value.Format(time.RFC3339))
		}
	}

	if d.tradeDate.After(*d.valueDate) || d.valueDate.After(*d.deliveryDate) {
		return TradeDetails{}, invalid(CodeDateValidation, "",
			"trade date <= value date <= delivery date failed (trade=%s value=%s delivery=%s)",
			d.tradeDate.Format(time.RFC3339Nano),
			d.valueDate.Format(time.RFC3339Nano),
			d.deliveryDate.Format(time.RFC3339Nano))
	}

	return TradeDetails{
		tradingEntity:      d.tradingEntity,
		counterParty:       d.counterParty,
		direction:          *d.direction,
		notionalCurrency:   *d.notionalCurrency,
		notionalAmount:     d.notionalAmount,
		underlyingCurrency: *d.underlyingCurrency,
		underlyingAmount:   d.underlyingAmount,
		tradeDate:          *d.tradeDate,
		valueDate:          *d.valueDate,
		deliveryDate:       *d.deliveryDate,
		strike:             clonePtr(d.strike),
	}, nil
}

package intake

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tradewit/internal/trade"
)

//go:embed schema.cue
var schemaSource string

// detailsInput mirrors #TradeDetails for decoding a validated value.
type detailsInput struct {
	TradingEntity      string  `json:"trading_entity"`
	CounterParty       string  `json:"counter_party"`
	Direction          string  `json:"direction"`
	NotionalCurrency   string  `json:"notional_currency"`
	NotionalAmount     uint64  `json:"notional_amount"`
	UnderlyingCurrency string  `json:"underlying_currency"`
	UnderlyingAmount   uint64  `json:"underlying_amount"`
	TradeDate          string  `json:"trade_date"`
	ValueDate          string  `json:"value_date"`
	DeliveryDate       string  `json:"delivery_date"`
	Strike             *uint64 `json:"strike,omitempty"`
}

// LoadFile reads a details file and returns the draft it describes.
// The format is chosen by extension: .cue, .json, .yaml or .yml.
func LoadFile(path string) (*trade.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: CodeReadFailed, Message: err.Error()}
	}
	return Parse(path, data)
}

// Parse decodes data as the format implied by filename.
func Parse(filename string, data []byte) (*trade.Draft, error) {
	ctx := cuecontext.New()

	var input cue.Value
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".cue":
		input = ctx.CompileBytes(data, cue.Filename(filename))
	case ".json":
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return nil, fromCUE(CodeParseFailed, err)
		}
		input = ctx.BuildExpr(expr)
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, &Error{Code: CodeParseFailed, Message: err.Error()}
		}
		input = ctx.Encode(m)
	default:
		return nil, &Error{Code: CodeUnsupportedFormat, Message: fmt.Sprintf("unsupported details format %q", ext)}
	}
	if err := input.Err(); err != nil {
		return nil, fromCUE(CodeParseFailed, err)
	}
	return fromValue(ctx, input)
}

// FromMap validates a decoded document, as found inside scenario files.
func FromMap(m map[string]any) (*trade.Draft, error) {
	ctx := cuecontext.New()
	input := ctx.Encode(m)
	if err := input.Err(); err != nil {
		return nil, fromCUE(CodeParseFailed, err)
	}
	return fromValue(ctx, input)
}

func fromValue(ctx *cue.Context, input cue.Value) (*trade.Draft, error) {
	schema, err := detailsSchema(ctx)
	if err != nil {
		return nil, err
	}

	v := schema.Unify(input)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUE(CodeSchemaViolation, err)
	}

	var in detailsInput
	if err := v.Decode(&in); err != nil {
		return nil, fromCUE(CodeSchemaViolation, err)
	}
	return in.draft()
}

func detailsSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile details schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#TradeDetails")), nil
}

func (in detailsInput) draft() (*trade.Draft, error) {
	dir, err := trade.ParseDirection(in.Direction)
	if err != nil {
		return nil, &Error{Code: CodeInvalidValue, Message: err.Error()}
	}
	notional, err := trade.ParseCurrency(in.NotionalCurrency)
	if err != nil {
		return nil, &Error{Code: CodeInvalidValue, Message: err.Error()}
	}
	underlying, err := trade.ParseCurrency(in.UnderlyingCurrency)
	if err != nil {
		return nil, &Error{Code: CodeInvalidValue, Message: err.Error()}
	}

	dates := make([]time.Time, 3)
	for i, f := range []struct{ name, value string }{
		{"trade_date", in.TradeDate},
		{"value_date", in.ValueDate},
		{"delivery_date", in.DeliveryDate},
	} {
		t, err := parseDate(f.value)
		if err != nil {
			return nil, &Error{Code: CodeInvalidValue, Message: fmt.Sprintf("%s: %v", f.name, err)}
		}
		dates[i] = t
	}

	d := trade.NewDraft().
		TradingEntity(in.TradingEntity).
		CounterParty(in.CounterParty).
		Direction(dir).
		NotionalCurrency(notional).
		NotionalAmount(in.NotionalAmount).
		UnderlyingCurrency(underlying).
		UnderlyingAmount(in.UnderlyingAmount).
		TradeDate(dates[0]).
		ValueDate(dates[1]).
		DeliveryDate(dates[2])
	if in.Strike != nil {
		d.Strike(*in.Strike)
	}
	return d, nil
}

// parseDate accepts a calendar date (midnight UTC) or an RFC 3339 instant.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

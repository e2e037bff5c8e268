package report

import (
	"fmt"
	"time"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/trade"
)

// JSON renders the history as a canonical JSON array. Amounts and strikes
// stay integers in minor units.
func JSON(entries []service.HistoryEntry) ([]byte, error) {
	arr := make(canonical.Array, 0, len(entries))
	for _, e := range entries {
		obj, err := entryObject(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Index, err)
		}
		arr = append(arr, obj)
	}
	return canonical.MarshalCanonical(arr)
}

func entryObject(e service.HistoryEntry) (canonical.Object, error) {
	if e.Witness.Action == nil {
		return nil, fmt.Errorf("witness has no action")
	}
	obj := canonical.Object{
		"index":        canonical.Int(e.Index),
		"trade_id":     canonical.String(e.Witness.TradeID),
		"action":       canonical.String(e.Witness.Action.Kind().String()),
		"user_id":      canonical.String(e.Witness.UserID),
		"timestamp":    canonical.String(e.Witness.Timestamp.UTC().Format(time.RFC3339Nano)),
		"state":        canonical.String(e.State.String()),
		"witness_hash": canonical.String(e.WitnessHash),
	}

	switch a := e.Witness.Action.(type) {
	case chain.Submit:
		obj["requester_id"] = canonical.String(a.RequesterID)
		obj["approver_id"] = canonical.String(a.ApproverID)
	case chain.Book:
		obj["strike"] = canonical.Uint(a.Strike)
	}
	if e.DetailsHash != "" {
		obj["details_hash"] = canonical.String(e.DetailsHash)
	}
	if e.Details != nil {
		obj["details"] = detailsObject(*e.Details)
	}
	return obj, nil
}

func detailsObject(d trade.TradeDetails) canonical.Object {
	obj := canonical.Object{
		"trading_entity":      canonical.String(d.TradingEntity()),
		"counter_party":       canonical.String(d.CounterParty()),
		"direction":           canonical.String(d.Direction().String()),
		"notional_currency":   canonical.String(d.NotionalCurrency().String()),
		"notional_amount":     canonical.Uint(d.NotionalAmount()),
		"underlying_currency": canonical.String(d.UnderlyingCurrency().String()),
		"underlying_amount":   canonical.Uint(d.UnderlyingAmount()),
		"trade_date":          canonical.String(d.TradeDate().Format(time.RFC3339Nano)),
		"value_date":          canonical.String(d.ValueDate().Format(time.RFC3339Nano)),
		"delivery_date":       canonical.String(d.DeliveryDate().Format(time.RFC3339Nano)),
	}
	if strike, ok := d.Strike(); ok {
		obj["strike"] = canonical.Uint(strike)
	}
	return obj
}

package testutil

import (
	"fmt"

	"github.com/roach88/tradewit/internal/ids"
	"github.com/roach88/tradewit/internal/trade"
)

// Well-known actors used across tests.
const (
	Requester = "user_requester"
	Approver  = "user_approver"
	Executor  = "user_executor"
	Intruder  = "user_intruder"
)

// SampleDraft returns a valid draft for a USD/GBP buy with dates
// 2024-06-01 <= 2024-06-15 <= 2024-06-30.
func SampleDraft() *trade.Draft {
	return trade.NewDraft().
		TradingEntity("entity_1trading").
		CounterParty("entity_1counter").
		Direction(trade.Buy).
		NotionalCurrency(trade.USD).
		NotionalAmount(1_000_000).
		UnderlyingCurrency(trade.GBP).
		UnderlyingAmount(790_000).
		TradeDate(trade.Date(2024, 6, 1, 0, 0, 0)).
		ValueDate(trade.Date(2024, 6, 15, 0, 0, 0)).
		DeliveryDate(trade.Date(2024, 6, 30, 0, 0, 0))
}

// SequentialIDs returns a generator holding n distinct UUIDv7-shaped values
// in ascending order.
//
// The same n always yields the same identifiers, which keeps trade IDs
// stable in golden files.
func SequentialIDs(n int) *ids.FixedGenerator {
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("01906f6e-8f00-7000-8000-%012x", i+1)
	}
	return ids.NewFixedUUIDGenerator(values...)
}

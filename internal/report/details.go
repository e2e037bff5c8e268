package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/trade"
)

// Details writes one details record as aligned key/value lines.
func Details(w io.Writer, d trade.TradeDetails, hash string, opts Options) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if hash != "" {
		fmt.Fprintf(tw, "hash\t%s\n", hash)
	}
	fmt.Fprintf(tw, "trading_entity\t%s\n", d.TradingEntity())
	fmt.Fprintf(tw, "counter_party\t%s\n", d.CounterParty())
	fmt.Fprintf(tw, "direction\t%s\n", d.Direction())
	fmt.Fprintf(tw, "notional\t%s %s\n", FormatUnits(d.NotionalAmount(), opts.AmountScale), d.NotionalCurrency())
	fmt.Fprintf(tw, "underlying\t%s %s\n", FormatUnits(d.UnderlyingAmount(), opts.AmountScale), d.UnderlyingCurrency())
	fmt.Fprintf(tw, "trade_date\t%s\n", formatDate(d.TradeDate()))
	fmt.Fprintf(tw, "value_date\t%s\n", formatDate(d.ValueDate()))
	fmt.Fprintf(tw, "delivery_date\t%s\n", formatDate(d.DeliveryDate()))
	if strike, ok := d.Strike(); ok {
		fmt.Fprintf(tw, "strike\t%s\n", FormatUnits(strike, opts.StrikeScale))
	}
	return tw.Flush()
}

// DetailsJSON renders one details record as canonical JSON.
func DetailsJSON(d trade.TradeDetails) ([]byte, error) {
	return canonical.MarshalCanonical(detailsObject(d))
}

package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/trade"
)

// Text writes an aligned timeline of the trade, one line per witness.
func Text(w io.Writer, tc *chain.TradeContext, entries []service.HistoryEntry, opts Options) error {
	fmt.Fprintf(w, "Trade %s\n", tc.TradeID())
	fmt.Fprintf(w, "State %s (%d witnesses)\n\n", tc.CurrentState(), tc.Len())

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	header := []string{"#", "ACTION", "USER", "TIMESTAMP", "STATE"}
	if opts.ShowHashes {
		header = append(header, "WITNESS")
	}
	header = append(header, "DETAILS")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, e := range entries {
		cells := []string{
			fmt.Sprint(e.Index),
			e.Witness.Action.Kind().String(),
			e.Witness.UserID,
			e.Witness.Timestamp.UTC().Format(time.RFC3339Nano),
			e.State.String(),
		}
		if opts.ShowHashes {
			cells = append(cells, shortHash(e.WitnessHash))
		}
		cells = append(cells, summarize(e, opts))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// summarize renders the payload of one witness.
func summarize(e service.HistoryEntry, opts Options) string {
	var parts []string
	switch a := e.Witness.Action.(type) {
	case chain.Submit:
		parts = append(parts, fmt.Sprintf("requester=%s approver=%s", a.RequesterID, a.ApproverID))
	case chain.Book:
		parts = append(parts, "strike="+FormatUnits(a.Strike, opts.StrikeScale))
	}
	if e.Details != nil {
		parts = append(parts, describeDetails(*e.Details, opts))
	}
	if opts.ShowHashes && e.DetailsHash != "" {
		parts = append(parts, "details="+shortHash(e.DetailsHash))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func describeDetails(d trade.TradeDetails, opts Options) string {
	s := fmt.Sprintf("%s %s %s / %s %s trade=%s value=%s delivery=%s",
		d.Direction(),
		FormatUnits(d.NotionalAmount(), opts.AmountScale), d.NotionalCurrency(),
		FormatUnits(d.UnderlyingAmount(), opts.AmountScale), d.UnderlyingCurrency(),
		formatDate(d.TradeDate()), formatDate(d.ValueDate()), formatDate(d.DeliveryDate()),
	)
	if strike, ok := d.Strike(); ok {
		s += " strike=" + FormatUnits(strike, opts.StrikeScale)
	}
	return s
}

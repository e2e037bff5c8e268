package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/ids"
	"github.com/roach88/tradewit/internal/report"
	"github.com/roach88/tradewit/internal/trade"
)

// TradeStatus is the payload of the status command.
type TradeStatus struct {
	TradeSummary
	RequiresApproval bool   `json:"requires_approval"`
	Approver         string `json:"approver,omitempty"`
	DetailsHash      string `json:"details_hash,omitempty"`
}

func (s TradeStatus) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, s.TradeSummary.String())
	fmt.Fprintf(&b, "requires approval: %t\n", s.RequiresApproval)
	if s.Approver != "" {
		fmt.Fprintf(&b, "approver: %s\n", s.Approver)
	}
	if s.DetailsHash != "" {
		fmt.Fprintf(&b, "details: %s", s.DetailsHash)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status <trade-id>",
		Short:         "Show the derived state of a trade",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return fail(f, err)
			}
			defer a.Close()

			tc, err := a.svc.LoadTrade(cmd.Context(), args[0])
			if err != nil {
				return fail(f, err)
			}
			status := TradeStatus{TradeSummary: summarize(tc), RequiresApproval: tc.RequiresApproval()}
			// A loaded trade always has a submit; tolerate a damaged chain here.
			if approver, err := tc.ExpectedApprover(); err == nil {
				status.Approver = approver
			}
			if hash, err := tc.LatestDetailsHash(); err == nil {
				status.DetailsHash = hash
			}
			return f.Success(status)
		},
	}
	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var showHashes bool

	cmd := &cobra.Command{
		Use:   "history <trade-id>",
		Short: "Show every witness of a trade",
		Long: `Show every witness of a trade with the state derived after it.

Text output is an aligned timeline. JSON output is a canonical array
with amounts and strikes as integers in minor units.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return fail(f, err)
			}
			defer a.Close()

			ctx := cmd.Context()
			tc, err := a.svc.LoadTrade(ctx, args[0])
			if err != nil {
				return fail(f, err)
			}
			entries, err := a.svc.History(ctx, args[0])
			if err != nil {
				return fail(f, err)
			}

			if f.Format == "json" {
				data, err := report.JSON(entries)
				if err != nil {
					return fail(f, err)
				}
				return f.Success(json.RawMessage(data))
			}
			return report.Text(f.Writer, tc, entries, a.reportOptions(showHashes))
		},
	}

	cmd.Flags().BoolVar(&showHashes, "hashes", false, "show witness and details hashes")
	return cmd
}

// NewDetailsCommand creates the details command.
func NewDetailsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <trade-id|details-hash>",
		Short: "Show trade details",
		Long: `Show the current details of a trade, or the details record stored
under a content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return fail(f, err)
			}
			defer a.Close()

			var (
				details trade.TradeDetails
				hash    string
			)
			if canonical.IsDigest(args[0]) {
				hash = args[0]
				details, err = a.svc.Details(cmd.Context(), hash)
			} else {
				details, hash, err = a.svc.CurrentDetails(cmd.Context(), args[0])
			}
			if err != nil {
				return fail(f, err)
			}

			if f.Format == "json" {
				data, err := report.DetailsJSON(details)
				if err != nil {
					return fail(f, err)
				}
				return f.Success(map[string]any{"hash": hash, "details": json.RawMessage(data)})
			}
			var buf bytes.Buffer
			if err := report.Details(&buf, details, hash, a.reportOptions(false)); err != nil {
				return fail(f, err)
			}
			_, err = f.Writer.Write(buf.Bytes())
			return err
		},
	}
	return cmd
}

// NewNewIDCommand creates the new-id command.
func NewNewIDCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-id [prefix]",
		Short: "Mint a new identifier",
		Long: `Mint a new UUIDv7 identifier encoded as bech32m under prefix
(default "user_"). Use it for user and entity identifiers.

Example:
  tradewit new-id entity_`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			prefix := ids.UserPrefix
			if len(args) == 1 {
				prefix = args[0]
			}
			id, err := ids.New(ids.UUIDv7Generator{}, prefix)
			if err != nil {
				return fail(f, NewExitError(ExitCommandError, err.Error()))
			}
			if f.Format == "json" {
				return f.Success(map[string]string{"id": id})
			}
			return f.Success(id)
		},
	}
	return cmd
}

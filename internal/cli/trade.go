package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/intake"
)

// TradeOptions holds flags shared by the workflow commands.
type TradeOptions struct {
	*RootOptions
	User      string
	Requester string
	Approver  string
	Strike    uint64
}

// TradeSummary is the payload returned by workflow commands.
type TradeSummary struct {
	TradeID   string `json:"trade_id"`
	State     string `json:"state"`
	Witnesses int    `json:"witnesses"`
}

func (s TradeSummary) String() string {
	return fmt.Sprintf("Trade %s %s (%d witnesses)", s.TradeID, s.State, s.Witnesses)
}

func summarize(tc *chain.TradeContext) TradeSummary {
	return TradeSummary{TradeID: tc.TradeID(), State: tc.CurrentState().String(), Witnesses: tc.Len()}
}

// tradeAction runs one workflow operation against an opened app and
// prints the resulting summary.
func tradeAction(opts *TradeOptions, cmd *cobra.Command, op func(ctx context.Context, a *app) (*chain.TradeContext, error)) error {
	f := opts.formatter(cmd)

	a, err := opts.openApp(cmd)
	if err != nil {
		return fail(f, err)
	}
	defer a.Close()

	tc, err := op(cmd.Context(), a)
	if err != nil {
		return fail(f, err)
	}
	return f.Success(summarize(tc))
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <details-file>",
		Short: "Submit a new trade for approval",
		Long: `Submit a new trade for approval.

The details file may be CUE, JSON or YAML and must match the
#TradeDetails schema. The submitting user defaults to the requester.

Example:
  tradewit submit trade.yaml --requester user_alice --approver user_bob`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				draft, err := intake.LoadFile(args[0])
				if err != nil {
					return nil, err
				}
				user := opts.User
				if user == "" {
					user = opts.Requester
				}
				return a.svc.SubmitTrade(ctx, draft, opts.Requester, opts.Approver, user)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Requester, "requester", "", "requesting user id")
	cmd.Flags().StringVar(&opts.Approver, "approver", "", "user id allowed to approve")
	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id (defaults to --requester)")
	return cmd
}

// NewApproveCommand creates the approve command.
func NewApproveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "approve <trade-id>",
		Short: "Approve a pending trade",
		Long: `Approve a trade that is pending approval.

Only the approver named by the latest submit may approve.

Example:
  tradewit approve trade_1... --user user_bob`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				return a.svc.ApproveTrade(ctx, args[0], opts.User)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "approving user id")
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <trade-id> <details-file>",
		Short: "Replace the details of a trade",
		Long: `Replace the details of a trade.

An update voids any standing approval; the trade must be approved again
before it can be sent to execution.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				draft, err := intake.LoadFile(args[1])
				if err != nil {
					return nil, err
				}
				return a.svc.UpdateTrade(ctx, args[0], draft, opts.User)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id")
	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "cancel <trade-id>",
		Short:         "Cancel a trade",
		Long:          "Cancel a trade. Cancelling a booked or cancelled trade is recorded but changes nothing.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				return a.svc.CancelTrade(ctx, args[0], opts.User)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id")
	return cmd
}

// NewExecuteCommand creates the execute command.
func NewExecuteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "execute <trade-id>",
		Short:         "Send an approved trade to execution",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				return a.svc.ExecuteTrade(ctx, args[0], opts.User)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id")
	return cmd
}

// NewBookCommand creates the book command.
func NewBookCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "book <trade-id>",
		Short: "Book a trade at its final strike",
		Long: `Book a trade at its final strike.

The strike is an integer rate in the configured strike scale, e.g.
1265000 is 1.265 at scale 6.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tradeAction(opts, cmd, func(ctx context.Context, a *app) (*chain.TradeContext, error) {
				return a.svc.BookTrade(ctx, args[0], opts.User, opts.Strike)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id")
	cmd.Flags().Uint64Var(&opts.Strike, "strike", 0, "executed strike in minor units")
	return cmd
}

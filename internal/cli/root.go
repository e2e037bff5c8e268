package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tradewit/internal/config"
	"github.com/roach88/tradewit/internal/kv"
	"github.com/roach88/tradewit/internal/logging"
	"github.com/roach88/tradewit/internal/report"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/telemetry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Backend    string // overrides store.backend
	StorePath  string // overrides store.path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tradewit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tradewit",
		Short: "tradewit - witnessed trade workflow",
		Long: `Record trade workflow actions as an append-only chain of witnesses
and derive the trade state from that chain.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "store backend (memory|bolt|badger|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "store file or directory")

	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewApproveCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewExecuteCommand(opts))
	cmd.AddCommand(NewBookCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDetailsCommand(opts))
	cmd.AddCommand(NewNewIDCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles what a store-backed command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   kv.Store
	svc     *service.Service
	closers []io.Closer
}

// openApp loads configuration, sets up logging and opens the store.
func (o *RootOptions) openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	logger, logCloser, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "set up logging", err)
	}

	tracing, err := telemetry.Setup(cmd.Context(), cfg.Trace)
	if err != nil {
		logCloser.Close()
		return nil, WrapExitError(ExitCommandError, "set up tracing", err)
	}
	if tracing.Enabled() {
		logger.Debug("exporting traces", "endpoint", cfg.Trace.Endpoint)
	}

	store, err := kv.Open(kv.Config{Backend: cfg.Store.Backend, Path: cfg.Store.Path, Logger: logger})
	if err != nil {
		tracing.Close()
		logCloser.Close()
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	logger.Debug("store opened", "backend", cfg.Store.Backend, "path", cfg.Store.Path)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc: service.New(store,
			service.WithLogger(logger),
			service.WithTracer(tracing.Tracer(cfg.Trace.ServiceName)),
		),
		closers: []io.Closer{store, tracing, logCloser},
	}, nil
}

// reportOptions returns rendering options from the config.
func (a *app) reportOptions(showHashes bool) report.Options {
	return report.Options{
		AmountScale: a.cfg.Report.AmountScale,
		StrikeScale: a.cfg.Report.StrikeScale,
		ShowHashes:  showHashes,
	}
}

// Close releases the store, flushes spans and closes the log file.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

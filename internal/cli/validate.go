package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tradewit/internal/intake"
)

// ValidationResult holds the outcome of validating a details file.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	File  string `json:"file"`
	Hash  string `json:"hash,omitempty"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %s is valid (details %s)", r.File, r.Hash)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <details-file>",
		Short: "Validate a trade details file without submitting it",
		Long: `Validate a CUE, JSON or YAML trade details file.

Checks the #TradeDetails schema and the domain rules (entities, amounts,
date ordering) and prints the content hash the details would be stored
under. Nothing is written to the store.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	draft, err := intake.LoadFile(path)
	if err != nil {
		return fail(f, err)
	}
	fin, err := draft.Finalize()
	if err != nil {
		return fail(f, err)
	}

	f.VerboseLog("encoded details: %d bytes", len(fin.Encoded))
	return f.Success(ValidationResult{Valid: true, File: path, Hash: fin.Hash})
}

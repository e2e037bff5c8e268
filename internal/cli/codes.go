package cli

import (
	"errors"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/codec"
	"github.com/roach88/tradewit/internal/intake"
	"github.com/roach88/tradewit/internal/kv"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/trade"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config or flag error
	ErrCodeStore       = "E003" // Store failure
	ErrCodeCorrupt     = "E004" // Stored record fails to decode or verify
	ErrCodeNotFound    = "E005" // Trade, details or witness not found
	ErrCodeDetailsFile = "E006" // Details file unreadable or off-schema
	ErrCodeWriteFailed = "E007" // File write error

	// Workflow errors
	ErrCodeWrongState       = "E101" // Action not allowed in the current state
	ErrCodeApproverMismatch = "E102" // Approver is not the one named by the submit
	ErrCodeMissingSubmit    = "E103" // Chain has no submit

	// Validation errors
	ErrCodeValidation = "E201" // Trade details or actor validation failed

	// Harness
	ErrCodeTestFailed = "E301" // One or more scenarios failed
)

// classify maps an error to its CLI code, the domain code (if any) and the
// exit code.
func classify(err error) (code, domain string, exit int) {
	var we *chain.WorkflowError
	switch {
	case errors.As(err, &we):
		switch we.Code {
		case chain.CodeWrongState:
			code = ErrCodeWrongState
		case chain.CodeApproverMismatch:
			code = ErrCodeApproverMismatch
		default:
			code = ErrCodeMissingSubmit
		}
		return code, string(we.Code), ExitFailure
	case trade.IsValidationError(err):
		return ErrCodeValidation, string(trade.ValidationCodeOf(err)), ExitFailure
	case intake.IsIntakeError(err):
		return ErrCodeDetailsFile, intake.CodeOf(err), ExitFailure
	case errors.Is(err, service.ErrTradeNotFound),
		errors.Is(err, service.ErrDetailsNotFound),
		errors.Is(err, service.ErrWitnessNotFound):
		return ErrCodeNotFound, "", ExitFailure
	case errors.Is(err, service.ErrHashMismatch), codec.IsCodecError(err):
		return ErrCodeCorrupt, "", ExitCommandError
	case kv.IsStoreError(err):
		return ErrCodeStore, "", ExitCommandError
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ErrCodeGeneric, "", exitErr.Code
	}
	return ErrCodeGeneric, "", ExitCommandError
}

// fail reports err through the formatter (JSON only; text errors are
// printed by main) and returns it as an ExitError.
func fail(f *OutputFormatter, err error) error {
	code, domain, exit := classify(err)
	if f.Format == "json" {
		if outErr := f.Error(CLIError{Code: code, Domain: domain, Message: err.Error()}); outErr != nil {
			return outErr
		}
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: exit, Message: code, Err: err}
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/intake"
	"github.com/roach88/tradewit/internal/kv"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/trade"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(TradeSummary{TradeID: "trade_1x", State: "Approved", Witnesses: 2})
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   TradeSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Approved", resp.Data.State)
	assert.Equal(t, 2, resp.Data.Witnesses)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(CLIError{Code: ErrCodeWrongState, Domain: "WRONG_STATE", Message: "trade is not approved"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWrongState, resp.Error.Code)
	assert.Equal(t, "trade is not approved", resp.Error.Message)
	assert.Equal(t, "WRONG_STATE", resp.Error.Domain)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(TradeSummary{TradeID: "trade_1x", State: "Booked", Witnesses: 4}))
	assert.Equal(t, "Trade trade_1x Booked (4 witnesses)\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(CLIError{Code: ErrCodeValidation, Domain: "ZERO_AMOUNT", Message: "notional amount is zero"}))
	assert.Equal(t, "Error [E201]: notional amount is zero (ZERO_AMOUNT)\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Error(CLIError{Code: ErrCodeStore, Message: "store failed"}))
	assert.Equal(t, "Error [E003]: store failed\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: tt.verbose}

			formatter.VerboseLog("Processing %s", "trade.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Processing trade.yaml")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		domain string
		exit   int
	}{
		{"wrong state", chain.WrongState("trade_1x", chain.Approved, chain.PendingApproval), ErrCodeWrongState, "WRONG_STATE", ExitFailure},
		{"approver mismatch", &chain.WorkflowError{Code: chain.CodeApproverMismatch}, ErrCodeApproverMismatch, "APPROVER_MISMATCH", ExitFailure},
		{"missing submit", &chain.WorkflowError{Code: chain.CodeMissingSubmit}, ErrCodeMissingSubmit, "MISSING_SUBMIT", ExitFailure},
		{"validation", fmt.Errorf("submit trade: %w", &trade.ValidationError{Code: trade.CodeZeroAmount}), ErrCodeValidation, "ZERO_AMOUNT", ExitFailure},
		{"intake", &intake.Error{Code: intake.CodeSchemaViolation}, ErrCodeDetailsFile, "SCHEMA_VIOLATION", ExitFailure},
		{"not found", fmt.Errorf("load trade: %w", service.ErrTradeNotFound), ErrCodeNotFound, "", ExitFailure},
		{"hash mismatch", service.ErrHashMismatch, ErrCodeCorrupt, "", ExitCommandError},
		{"store", &kv.Error{Op: "get", Backend: "bolt", Err: errors.New("io")}, ErrCodeStore, "", ExitCommandError},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ErrCodeGeneric, "", ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, "", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, domain, exit := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.domain, domain)
			assert.Equal(t, tt.exit, exit)
		})
	}
}

func TestFailWritesJSONAndKeepsExitCode(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := fail(f, chain.WrongState("trade_1x", chain.Approved, chain.PendingApproval))
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWrongState, resp.Error.Code)
	assert.Equal(t, "WRONG_STATE", resp.Error.Domain)
}

func TestFailTextIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := fail(f, service.ErrTradeNotFound)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, buf.String())
	assert.ErrorIs(t, err, service.ErrTradeNotFound)
}

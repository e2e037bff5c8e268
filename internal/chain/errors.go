package chain

import (
	"errors"
	"fmt"
)

// WorkflowCode categorizes rejected workflow transitions.
type WorkflowCode string

const (
	// CodeWrongState indicates the derived state does not permit the action.
	CodeWrongState WorkflowCode = "WRONG_STATE"

	// CodeApproverMismatch indicates the approver is not the one named at submit.
	CodeApproverMismatch WorkflowCode = "APPROVER_MISMATCH"

	// CodeMissingSubmit indicates the chain has no Submit witness.
	CodeMissingSubmit WorkflowCode = "MISSING_SUBMIT"
)

// WorkflowError reports a precondition failure with the expected and
// actual condition.
type WorkflowError struct {
	Code     WorkflowCode
	Expected string
	Actual   string
	TradeID  string
}

func (e *WorkflowError) Error() string {
	var msg string
	switch e.Code {
	case CodeMissingSubmit:
		msg = fmt.Sprintf("%s: no submit witness found", e.Code)
	default:
		msg = fmt.Sprintf("%s: expected %s, got %s", e.Code, e.Expected, e.Actual)
	}
	if e.TradeID != "" {
		msg += fmt.Sprintf(" (trade=%s)", e.TradeID)
	}
	return msg
}

// IsWorkflowError reports whether err is or wraps a WorkflowError.
func IsWorkflowError(err error) bool {
	var we *WorkflowError
	return errors.As(err, &we)
}

// IsCode reports whether err is or wraps a WorkflowError with the given code.
func IsCode(err error, code WorkflowCode) bool {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

// WrongState builds a CodeWrongState error.
func WrongState(tradeID string, expected, actual State) *WorkflowError {
	return &WorkflowError{
		Code:     CodeWrongState,
		Expected: expected.String(),
		Actual:   actual.String(),
		TradeID:  tradeID,
	}
}

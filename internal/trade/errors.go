package trade

import (
	"errors"
	"fmt"
)

// ValidationCode categorizes validation failures.
type ValidationCode string

const (
	// CodeInvalidEntity indicates the trading entity or counterparty is unset.
	CodeInvalidEntity ValidationCode = "INVALID_ENTITY"

	// CodeUnsetField indicates direction, a currency or a date is unset.
	CodeUnsetField ValidationCode = "UNSET_FIELD"

	// CodeZeroAmount indicates a notional or underlying amount of zero.
	CodeZeroAmount ValidationCode = "ZERO_AMOUNT"

	// CodeDateValidation indicates trade <= value <= delivery does not hold.
	CodeDateValidation ValidationCode = "DATE_VALIDATION"

	// CodeTimestampRange indicates a date outside the int64 nanosecond range.
	CodeTimestampRange ValidationCode = "TIMESTAMP_RANGE"
)

// ValidationError reports why a draft could not be finalized.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationCodeOf returns the code of a wrapped ValidationError, or "".
func ValidationCodeOf(err error) ValidationCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

func invalid(code ValidationCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

package intake

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for intake failures.
const (
	CodeReadFailed        = "READ_FAILED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeParseFailed       = "PARSE_FAILED"
	CodeSchemaViolation   = "SCHEMA_VIOLATION"
	CodeInvalidValue      = "INVALID_VALUE"
)

// Error represents a details file that could not be turned into a draft.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsIntakeError reports whether err is or wraps an intake Error.
func IsIntakeError(err error) bool {
	var ie *Error
	return errors.As(err, &ie)
}

// CodeOf returns the code of a wrapped intake Error, or "".
func CodeOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// fromCUE converts the first CUE error into an intake Error, keeping its
// position.
func fromCUE(code string, err error) *Error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: code, Message: err.Error()}
	}
	first := errs[0]
	out := &Error{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}

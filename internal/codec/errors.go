package codec

import (
	"errors"
	"fmt"
)

// Op names the direction of a failed codec call.
type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

var errEmptyInput = errors.New("empty input")

// Error is returned for every encode or decode failure.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a decode error for a record that is well-formed CBOR but
// violates the record schema (unknown enum value, misplaced payload field).
func Errorf(format string, args ...any) error {
	return &Error{Op: OpDecode, Err: fmt.Errorf(format, args...)}
}

// IsCodecError reports whether err is or wraps a codec Error.
func IsCodecError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

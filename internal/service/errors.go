package service

import "errors"

var (
	// ErrTradeNotFound is returned when no context is stored for a trade ID.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrDetailsNotFound is returned when no details record is stored for a hash.
	ErrDetailsNotFound = errors.New("details not found")

	// ErrWitnessNotFound is returned when no witness blob is stored for a hash.
	ErrWitnessNotFound = errors.New("witness not found")

	// ErrHashMismatch is returned when a stored record does not hash back to its key.
	ErrHashMismatch = errors.New("content hash mismatch")
)

// Package ids mints the human-readable identifiers used across tradewit.
//
// Every identifier is a time-ordered random value (UUIDv7) rendered with
// bech32m under a human-readable prefix:
//
//	trade_1qyqszqgpqyqszqgpqyqszqgpqyqszqgp...
//
// The prefix names the kind of thing identified ("trade_", "user_",
// "entity_") and the checksum catches transcription errors before an ID
// ever reaches the store.
//
// Generators are injected so tests can replace randomness with a fixed
// sequence (see FixedGenerator).
package ids

// Package codec is the deterministic binary serialization boundary.
//
// Records are encoded as CBOR maps keyed by small integers (the struct tags
// carry the schema). Encoding uses Core Deterministic Encoding so that a
// logical value always produces the same bytes, which content addressing
// depends on. Decoding is strict: duplicate keys, unknown fields and
// trailing bytes are rejected.
package codec

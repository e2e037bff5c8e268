// Package canonical holds the deterministic building blocks of content
// addressing: the domain-separated digest applied to codec output, and an
// RFC 8785 canonical JSON writer used for audit exports and golden traces.
//
// Key design constraints:
//   - NO float types anywhere - amounts are integers in minor units
//   - Object keys are ordered by UTF-16 code units, never by map iteration
//   - Strings are NFC normalized at the serialization boundary
//   - Digests are only ever taken over encoded bytes, never over Go values
package canonical

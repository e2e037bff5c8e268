// Package report renders a trade's audit history.
//
// Text output is an aligned timeline meant for terminals. JSON output uses
// the canonical writer, so the same history always renders to the same
// bytes and can be diffed or hashed.
package report

// Package trade defines the trade details record: the economics of a trade,
// built incrementally through a Draft, validated in one place and then
// frozen. A finalized record has no identity field; its identity is the
// content hash of its canonical encoding.
package trade

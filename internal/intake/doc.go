// Package intake turns trade details files into drafts.
//
// Input is CUE, JSON or YAML. Every document is unified with the embedded
// #TradeDetails schema before it is decoded, so shape errors surface with
// CUE positions instead of as zero values. Domain rules (date ordering,
// timestamp range) are still checked by trade.ValidateAndFinalize.
package intake

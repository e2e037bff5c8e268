// Package service coordinates the trade workflow. It is the only package
// that touches the store.
//
// Every mutating operation follows the same shape: load the trade context
// (or create one, for a submission), check the derived state against the
// operation's precondition, append exactly one witness and persist the
// result with a single atomic batch. The batch holds the details record
// (for Submit and Update), the witness blob keyed by its hash, and the
// context keyed by the trade ID.
//
// Preconditions:
//
//	SubmitTrade   details validate
//	ApproveTrade  state is PendingApproval and the approver matches the submit
//	UpdateTrade   details validate (any state)
//	CancelTrade   none
//	ExecuteTrade  state is Approved
//	BookTrade     none
//
// The service holds no per-trade state. Two concurrent operations on the
// same trade race and the last writer wins; callers that need stronger
// guarantees must serialize per trade above this layer.
package service

// Package harness runs YAML trade workflow scenarios.
//
// A scenario names a base set of trade details and a list of steps. Each
// step performs one workflow operation through the service against a fresh
// in-memory store, with a deterministic clock and deterministic trade IDs,
// and may state the error code or state it expects.
//
// Example:
//
//	name: approve_and_book
//	description: Submit, approve, execute and book one trade
//	details:
//	  trading_entity: entity_1trading
//	  ...
//	steps:
//	  - action: submit
//	    user: user_requester
//	    requester: user_requester
//	    approver: user_approver
//	    expect_state: PendingApproval
//	  - action: approve
//	    user: user_approver
//	    expect_state: Approved
//
// The trace of a run (step, action, trade index, outcome, state) is
// rendered as canonical JSON and compared against
// testdata/golden/<name>.golden by RunWithGolden. Trade IDs and hashes are
// left out of the trace so goldens stay readable.
package harness

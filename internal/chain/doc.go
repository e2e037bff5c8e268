// Package chain implements the witness chain: the append-only sequence of
// workflow actions recorded against a trade, and the replay that derives a
// trade's lifecycle state from it.
//
// State is never stored. Every query recomputes it from the witnesses, so
// the chain is the single source of truth:
//
//	Submit -> PendingApproval -> Approve -> Approved -> SendToExecute -> SentToExecute
//	                 ^                          |
//	                 +--------- Update ---------+
//
// Book and Cancel are terminal. Whichever appears first in the chain fixes
// the state permanently.
package chain

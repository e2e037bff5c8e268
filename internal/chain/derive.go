package chain

// Derive replays a witness chain into its current state. It is pure and
// total: every sequence, including anomalous ones, maps to a state.
//
// The first Book or Cancel in chain order is final. Otherwise the chain is
// walked from the newest witness back, and the nearest gate decides:
// SendToExecute gives SentToExecute, Submit or Update gives Approved when
// an Approve was passed on the way, else PendingApproval. A chain with no
// gate at all is Draft, including one that only holds Approve witnesses.
func Derive(witnesses []Witness) State {
	if len(witnesses) == 0 {
		return Draft
	}

	for _, w := range witnesses {
		switch w.Action.(type) {
		case Book:
			return Booked
		case Cancel:
			return Cancelled
		}
	}

	approved := false
	for i := len(witnesses) - 1; i >= 0; i-- {
		switch witnesses[i].Action.(type) {
		case SendToExecute:
			return SentToExecute
		case Submit, Update:
			if approved {
				return Approved
			}
			return PendingApproval
		case Approve:
			approved = true
		case Book, Cancel:
			// Handled by the forward pass.
		}
	}

	return Draft
}

// RequiresApproval reports whether the chain is waiting for its approver.
func RequiresApproval(witnesses []Witness) bool {
	return Derive(witnesses) == PendingApproval
}

// ExpectedApprover returns the approver named by the most recent Submit.
// Update witnesses carry no approver and are skipped.
func ExpectedApprover(witnesses []Witness) (string, error) {
	for i := len(witnesses) - 1; i >= 0; i-- {
		if s, ok := witnesses[i].Action.(Submit); ok {
			return s.ApproverID, nil
		}
	}
	return "", &WorkflowError{Code: CodeMissingSubmit, Expected: KindSubmit.String(), Actual: "none"}
}

// LatestDetailsHash returns the details hash of the most recent Submit or
// Update.
func LatestDetailsHash(witnesses []Witness) (string, error) {
	for i := len(witnesses) - 1; i >= 0; i-- {
		if h, ok := DetailsHash(witnesses[i].Action); ok {
			return h, nil
		}
	}
	return "", &WorkflowError{Code: CodeMissingSubmit, Expected: KindSubmit.String(), Actual: "none"}
}

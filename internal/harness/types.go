package harness

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	// Trade is the index of the target trade, or -1 for a failed submit.
	Trade int `json:"trade"`
	// Outcome is the kind of the recorded witness, or the error code.
	Outcome string `json:"outcome"`
	// State is the trade state after the step, empty if no trade exists.
	State string `json:"state,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step met its expectations.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation mismatches.
	Errors []string `json:"errors,omitempty"`

	// TradeIDs are the IDs of submitted trades in submission order.
	TradeIDs []string `json:"trade_ids,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

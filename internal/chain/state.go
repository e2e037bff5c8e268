package chain

import "fmt"

// State is a derived lifecycle state.
type State uint8

const (
	Draft State = iota
	PendingApproval
	Approved
	Cancelled
	SentToExecute
	Booked
)

var stateNames = [...]string{
	Draft:           "Draft",
	PendingApproval: "PendingApproval",
	Approved:        "Approved",
	Cancelled:       "Cancelled",
	SentToExecute:   "SentToExecute",
	Booked:          "Booked",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Terminal reports whether no later witness can change the state.
func (s State) Terminal() bool {
	return s == Cancelled || s == Booked
}

// ParseState parses a state name as returned by String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tradewit/internal/chain"
)

// Step actions.
const (
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionUpdate  = "update"
	ActionCancel  = "cancel"
	ActionExecute = "execute"
	ActionBook    = "book"
)

// Scenario defines a workflow scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TradeIDs are UUID strings handed out, in order, to submitted trades.
	// If empty, sequential UUIDs are used.
	TradeIDs []string `yaml:"trade_ids,omitempty"`

	// Clock controls the timestamps stamped on witnesses.
	Clock ClockConfig `yaml:"clock,omitempty"`

	// Details is the base trade details document used by submit and update.
	Details map[string]any `yaml:"details"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`
}

// ClockConfig configures the deterministic clock.
type ClockConfig struct {
	// Start is an RFC 3339 instant. Empty means testutil.DefaultEpoch.
	Start string `yaml:"start,omitempty"`

	// Step is a Go duration between readings. Empty means one second.
	Step string `yaml:"step,omitempty"`
}

// Step is one workflow operation.
type Step struct {
	// Action is one of submit, approve, update, cancel, execute, book.
	Action string `yaml:"action"`

	// Trade is the index of the target trade in submission order.
	// Ignored by submit.
	Trade int `yaml:"trade,omitempty"`

	// User performs the action. For approve it is the approver.
	User string `yaml:"user"`

	// Requester and Approver are the actors named by a submit.
	Requester string `yaml:"requester,omitempty"`
	Approver  string `yaml:"approver,omitempty"`

	// Details overrides keys of the base details for submit and update.
	// A null value removes the key.
	Details map[string]any `yaml:"details,omitempty"`

	// Strike is the executed rate recorded by book.
	Strike uint64 `yaml:"strike,omitempty"`

	// ExpectState is the state the target trade must be in afterwards.
	ExpectState string `yaml:"expect_state,omitempty"`

	// ExpectError is the error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, _, err := s.Clock.parse(); err != nil {
		return err
	}

	submits := 0
	for i, step := range s.Steps {
		switch step.Action {
		case ActionSubmit:
			submits++
		case ActionApprove, ActionUpdate, ActionCancel, ActionExecute, ActionBook:
			if step.Trade < 0 {
				return fmt.Errorf("steps[%d]: trade index must be non-negative", i)
			}
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.ExpectState != "" {
			if _, err := chain.ParseState(step.ExpectState); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
		if step.ExpectState != "" && step.ExpectError != "" && step.Action == ActionSubmit {
			return fmt.Errorf("steps[%d]: a failed submit has no state to expect", i)
		}
	}

	if len(s.TradeIDs) > 0 && len(s.TradeIDs) < submits {
		return fmt.Errorf("trade_ids has %d entries but the scenario submits %d trades", len(s.TradeIDs), submits)
	}
	for i, id := range s.TradeIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("trade_ids[%d]: %w", i, err)
		}
	}
	return nil
}

func (c ClockConfig) parse() (time.Time, time.Duration, error) {
	var (
		start time.Time
		step  time.Duration
		err   error
	)
	if c.Start != "" {
		start, err = time.Parse(time.RFC3339Nano, c.Start)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("clock.start: %w", err)
		}
	}
	if c.Step != "" {
		step, err = time.ParseDuration(c.Step)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("clock.step: %w", err)
		}
		if step <= 0 {
			return time.Time{}, 0, fmt.Errorf("clock.step must be positive")
		}
	}
	return start, step, nil
}

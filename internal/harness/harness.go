package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/ids"
	"github.com/roach88/tradewit/internal/intake"
	"github.com/roach88/tradewit/internal/kv"
	"github.com/roach88/tradewit/internal/service"
	"github.com/roach88/tradewit/internal/testutil"
	"github.com/roach88/tradewit/internal/trade"
)

// CodeNotFound is the outcome of a step whose trade does not exist.
const CodeNotFound = "NOT_FOUND"

// Harness executes the steps of one scenario.
type Harness struct {
	svc    *service.Service
	trades []string
	base   map[string]any
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store. Expectation
// mismatches are reported in the result; an error is returned only when
// the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	start, step, err := scenario.Clock.parse()
	if err != nil {
		return nil, err
	}

	store := kv.NewMemory()
	defer store.Close()

	h := &Harness{
		svc: service.New(store,
			service.WithClock(testutil.NewDeterministicClock(start, step)),
			service.WithIDGenerator(scenarioIDs(scenario)),
			service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
		base: scenario.Details,
	}

	result := NewResult()
	for i, st := range scenario.Steps {
		event, stepErr, err := h.execute(ctx, i, st)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.Trace = append(result.Trace, event)
		for _, msg := range checkStep(i, st, event, stepErr) {
			result.AddError(msg)
		}
	}
	result.TradeIDs = append([]string(nil), h.trades...)
	return result, nil
}

// scenarioIDs returns the generator handing out trade IDs.
func scenarioIDs(s *Scenario) ids.Generator {
	if len(s.TradeIDs) > 0 {
		return ids.NewFixedUUIDGenerator(s.TradeIDs...)
	}
	submits := 0
	for _, st := range s.Steps {
		if st.Action == ActionSubmit {
			submits++
		}
	}
	return testutil.SequentialIDs(submits)
}

// execute runs one step. stepErr is the workflow error the step produced,
// err is reserved for failures that stop the scenario.
func (h *Harness) execute(ctx context.Context, index int, st Step) (event TraceEvent, stepErr error, err error) {
	event = TraceEvent{Step: index, Action: st.Action, Trade: st.Trade}

	var tc *chain.TradeContext
	if st.Action == ActionSubmit {
		event.Trade = -1
		var draft *trade.Draft
		draft, stepErr = h.draft(st.Details)
		if stepErr == nil {
			tc, stepErr = h.svc.SubmitTrade(ctx, draft, st.Requester, st.Approver, st.User)
		}
		if stepErr == nil {
			h.trades = append(h.trades, tc.TradeID())
			event.Trade = len(h.trades) - 1
		}
	} else {
		if st.Trade >= len(h.trades) {
			return event, nil, fmt.Errorf("trade %d has not been submitted", st.Trade)
		}
		tradeID := h.trades[st.Trade]
		switch st.Action {
		case ActionApprove:
			tc, stepErr = h.svc.ApproveTrade(ctx, tradeID, st.User)
		case ActionUpdate:
			var draft *trade.Draft
			draft, stepErr = h.draft(st.Details)
			if stepErr == nil {
				tc, stepErr = h.svc.UpdateTrade(ctx, tradeID, draft, st.User)
			}
		case ActionCancel:
			tc, stepErr = h.svc.CancelTrade(ctx, tradeID, st.User)
		case ActionExecute:
			tc, stepErr = h.svc.ExecuteTrade(ctx, tradeID, st.User)
		case ActionBook:
			tc, stepErr = h.svc.BookTrade(ctx, tradeID, st.User, st.Strike)
		}
	}

	if stepErr != nil {
		event.Outcome = ErrorCode(stepErr)
		if event.Outcome == "" {
			return event, nil, stepErr
		}
	} else {
		witnesses := tc.Witnesses()
		event.Outcome = witnesses[len(witnesses)-1].Action.Kind().String()
	}

	if event.Trade >= 0 {
		state, err := h.svc.State(ctx, h.trades[event.Trade])
		if err != nil {
			return event, nil, err
		}
		event.State = state.String()
	}
	return event, stepErr, nil
}

// draft merges overrides into the base details and validates the result.
func (h *Harness) draft(overrides map[string]any) (*trade.Draft, error) {
	doc := maps.Clone(h.base)
	if doc == nil {
		doc = map[string]any{}
	}
	for k, v := range overrides {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	return intake.FromMap(doc)
}

// ErrorCode returns the code a scenario uses to name err: a workflow,
// validation or intake code, or NOT_FOUND. It returns "" for anything else.
func ErrorCode(err error) string {
	var we *chain.WorkflowError
	switch {
	case errors.As(err, &we):
		return string(we.Code)
	case trade.IsValidationError(err):
		return string(trade.ValidationCodeOf(err))
	case intake.IsIntakeError(err):
		return intake.CodeOf(err)
	case errors.Is(err, service.ErrTradeNotFound):
		return CodeNotFound
	}
	return ""
}

// checkStep compares a step's event with its expectations.
func checkStep(index int, st Step, event TraceEvent, stepErr error) []string {
	var errs []string
	switch {
	case st.ExpectError != "" && stepErr == nil:
		errs = append(errs, fmt.Sprintf("step %d (%s): expected error %s, got %s",
			index, st.Action, st.ExpectError, event.Outcome))
	case st.ExpectError != "" && event.Outcome != st.ExpectError:
		errs = append(errs, fmt.Sprintf("step %d (%s): expected error %s, got %s: %v",
			index, st.Action, st.ExpectError, event.Outcome, stepErr))
	case st.ExpectError == "" && stepErr != nil:
		errs = append(errs, fmt.Sprintf("step %d (%s): unexpected error: %v",
			index, st.Action, stepErr))
	}
	if st.ExpectState != "" && event.State != st.ExpectState {
		errs = append(errs, fmt.Sprintf("step %d (%s): expected state %s, got %s",
			index, st.Action, st.ExpectState, event.State))
	}
	return errs
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/kv"
	"github.com/roach88/tradewit/internal/trade"
)

// SubmitTrade validates draft, creates a new trade and records a Submit
// witness naming the requester and the single authorized approver.
func (s *Service) SubmitTrade(ctx context.Context, draft *trade.Draft, requesterID, approverID, userID string) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindSubmit, "")
	defer func() { s.finish(ctx, span, chain.KindSubmit, "", tc, err) }()

	if err := requireActors(map[string]string{
		"requester_id": requesterID,
		"approver_id":  approverID,
		"user_id":      userID,
	}); err != nil {
		return nil, err
	}
	fin, err := trade.ValidateAndFinalize(draft)
	if err != nil {
		return nil, fmt.Errorf("submit trade: %w", err)
	}

	tc, err = chain.New(s.gen)
	if err != nil {
		return nil, fmt.Errorf("submit trade: %w", err)
	}
	action := chain.Submit{DetailsHash: fin.Hash, RequesterID: requesterID, ApproverID: approverID}
	if err := s.record(ctx, tc, userID, action, &fin); err != nil {
		return nil, err
	}
	return tc, nil
}

// ApproveTrade records an Approve witness. The trade must be pending
// approval and approverID must be the approver named by the latest Submit.
func (s *Service) ApproveTrade(ctx context.Context, tradeID, approverID string) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindApprove, tradeID)
	defer func() { s.finish(ctx, span, chain.KindApprove, tradeID, tc, err) }()

	if err := requireActors(map[string]string{"approver_id": approverID}); err != nil {
		return nil, err
	}
	tc, err = s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if state := tc.CurrentState(); state != chain.PendingApproval {
		return nil, chain.WrongState(tradeID, chain.PendingApproval, state)
	}
	expected, err := tc.ExpectedApprover()
	if err != nil {
		return nil, err
	}
	if approverID != expected {
		return nil, &chain.WorkflowError{
			Code:     chain.CodeApproverMismatch,
			Expected: expected,
			Actual:   approverID,
			TradeID:  tradeID,
		}
	}

	if err := s.record(ctx, tc, approverID, chain.Approve{}, nil); err != nil {
		return nil, err
	}
	return tc, nil
}

// UpdateTrade validates draft and records an Update witness referencing
// the new details. Any standing approval is voided.
func (s *Service) UpdateTrade(ctx context.Context, tradeID string, draft *trade.Draft, userID string) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindUpdate, tradeID)
	defer func() { s.finish(ctx, span, chain.KindUpdate, tradeID, tc, err) }()

	if err := requireActors(map[string]string{"user_id": userID}); err != nil {
		return nil, err
	}
	fin, err := trade.ValidateAndFinalize(draft)
	if err != nil {
		return nil, fmt.Errorf("update trade %s: %w", tradeID, err)
	}
	tc, err = s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, tc, userID, chain.Update{DetailsHash: fin.Hash}, &fin); err != nil {
		return nil, err
	}
	return tc, nil
}

// CancelTrade records a Cancel witness. Cancelling an already terminal
// trade is recorded but does not change its state.
func (s *Service) CancelTrade(ctx context.Context, tradeID, userID string) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindCancel, tradeID)
	defer func() { s.finish(ctx, span, chain.KindCancel, tradeID, tc, err) }()

	if err := requireActors(map[string]string{"user_id": userID}); err != nil {
		return nil, err
	}
	tc, err = s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, tc, userID, chain.Cancel{}, nil); err != nil {
		return nil, err
	}
	return tc, nil
}

// ExecuteTrade records a SendToExecute witness. The trade must be Approved.
func (s *Service) ExecuteTrade(ctx context.Context, tradeID, userID string) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindSendToExecute, tradeID)
	defer func() { s.finish(ctx, span, chain.KindSendToExecute, tradeID, tc, err) }()

	if err := requireActors(map[string]string{"user_id": userID}); err != nil {
		return nil, err
	}
	tc, err = s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if state := tc.CurrentState(); state != chain.Approved {
		return nil, chain.WrongState(tradeID, chain.Approved, state)
	}

	if err := s.record(ctx, tc, userID, chain.SendToExecute{}, nil); err != nil {
		return nil, err
	}
	return tc, nil
}

// BookTrade records a Book witness carrying the final strike.
func (s *Service) BookTrade(ctx context.Context, tradeID, userID string, strike uint64) (tc *chain.TradeContext, err error) {
	ctx, span := s.startSpan(ctx, chain.KindBook, tradeID)
	defer func() { s.finish(ctx, span, chain.KindBook, tradeID, tc, err) }()

	if err := requireActors(map[string]string{"user_id": userID}); err != nil {
		return nil, err
	}
	tc, err = s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, tc, userID, chain.Book{Strike: strike}, nil); err != nil {
		return nil, err
	}
	return tc, nil
}

// record appends one witness and persists the details record (if any),
// the witness blob and the context in one batch.
func (s *Service) record(ctx context.Context, tc *chain.TradeContext, userID string, action chain.Action, fin *trade.Finalized) error {
	w := chain.NewWitness(tc.TradeID(), userID, s.clock.Now(), action)
	tc.InsertWitness(w)

	witnessBytes, err := w.Encode()
	if err != nil {
		return fmt.Errorf("persist trade %s: %w", tc.TradeID(), err)
	}
	contextBytes, err := tc.Encode()
	if err != nil {
		return fmt.Errorf("persist trade %s: %w", tc.TradeID(), err)
	}

	batch := kv.NewBatch()
	if fin != nil {
		batch.Insert([]byte(fin.Hash), fin.Encoded)
	}
	batch.Insert([]byte(canonical.Digest(canonical.DomainWitness, witnessBytes)), witnessBytes)
	batch.Insert([]byte(tc.TradeID()), contextBytes)

	if err := s.store.ApplyBatch(ctx, batch); err != nil {
		return fmt.Errorf("persist trade %s: %w", tc.TradeID(), err)
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, kind chain.ActionKind, tradeID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("trade.action", kind.String())}
	if tradeID != "" {
		attrs = append(attrs, attribute.String("trade.id", tradeID))
	}
	return s.tracer.Start(ctx, "tradewit."+kind.String(), trace.WithAttributes(attrs...))
}

// finish ends the operation span and writes the operation's log record.
func (s *Service) finish(ctx context.Context, span trace.Span, kind chain.ActionKind, tradeID string, tc *chain.TradeContext, err error) {
	defer span.End()
	if tc != nil {
		tradeID = tc.TradeID()
	}
	span.SetAttributes(attribute.String("trade.id", tradeID))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		level := slog.LevelError
		if isRejection(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "trade action rejected",
			"trade_id", tradeID,
			"action", kind.String(),
			"error", err,
		)
		return
	}

	state := tc.CurrentState()
	span.SetAttributes(attribute.String("trade.state", state.String()))
	s.logger.InfoContext(ctx, "trade action recorded",
		"trade_id", tradeID,
		"action", kind.String(),
		"state", state.String(),
		"witnesses", tc.Len(),
	)
}

// isRejection reports whether err is a caller mistake rather than a fault.
func isRejection(err error) bool {
	return chain.IsWorkflowError(err) ||
		trade.IsValidationError(err) ||
		errors.Is(err, ErrTradeNotFound)
}

// requireActors rejects empty actor identifiers, which could not be
// encoded into a witness.
func requireActors(actors map[string]string) error {
	for _, field := range []string{"requester_id", "approver_id", "user_id"} {
		if v, ok := actors[field]; ok && v == "" {
			return &trade.ValidationError{
				Code:    trade.CodeUnsetField,
				Field:   field,
				Message: field + " is not set",
			}
		}
	}
	return nil
}

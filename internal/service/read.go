package service

import (
	"context"
	"fmt"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/chain"
	"github.com/roach88/tradewit/internal/codec"
	"github.com/roach88/tradewit/internal/trade"
)

// HistoryEntry is one witness of a trade together with the state derived
// once that witness was applied.
type HistoryEntry struct {
	Index       int
	Witness     chain.Witness
	WitnessHash string
	State       chain.State

	// DetailsHash and Details are set for Submit and Update witnesses.
	DetailsHash string
	Details     *trade.TradeDetails
}

// LoadTrade reads and decodes the context stored under tradeID.
func (s *Service) LoadTrade(ctx context.Context, tradeID string) (*chain.TradeContext, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("load trade: %w: empty trade id", ErrTradeNotFound)
	}
	data, found, err := s.store.Get(ctx, []byte(tradeID))
	if err != nil {
		return nil, fmt.Errorf("load trade %s: %w", tradeID, err)
	}
	if !found {
		return nil, fmt.Errorf("load trade %s: %w", tradeID, ErrTradeNotFound)
	}
	tc, err := chain.DecodeTradeContext(data)
	if err != nil {
		return nil, fmt.Errorf("load trade %s: %w", tradeID, err)
	}
	if tc.TradeID() != tradeID {
		return nil, fmt.Errorf("load trade %s: %w",
			tradeID, codec.Errorf("stored context belongs to %s", tc.TradeID()))
	}
	return tc, nil
}

// State returns the derived state of a stored trade.
func (s *Service) State(ctx context.Context, tradeID string) (chain.State, error) {
	tc, err := s.LoadTrade(ctx, tradeID)
	if err != nil {
		return chain.Draft, err
	}
	return tc.CurrentState(), nil
}

// Details returns the details record stored under hash. The record must
// hash back to its key.
func (s *Service) Details(ctx context.Context, hash string) (trade.TradeDetails, error) {
	data, found, err := s.store.Get(ctx, []byte(hash))
	if err != nil {
		return trade.TradeDetails{}, fmt.Errorf("load details %s: %w", hash, err)
	}
	if !found {
		return trade.TradeDetails{}, fmt.Errorf("load details %s: %w", hash, ErrDetailsNotFound)
	}
	if got := trade.HashEncoded(data); got != hash {
		return trade.TradeDetails{}, fmt.Errorf("load details %s: %w (got %s)", hash, ErrHashMismatch, got)
	}
	details, err := trade.DecodeDetails(data)
	if err != nil {
		return trade.TradeDetails{}, fmt.Errorf("load details %s: %w", hash, err)
	}
	return details, nil
}

// WitnessByHash returns the witness blob stored under hash.
func (s *Service) WitnessByHash(ctx context.Context, hash string) (chain.Witness, error) {
	data, found, err := s.store.Get(ctx, []byte(hash))
	if err != nil {
		return chain.Witness{}, fmt.Errorf("load witness %s: %w", hash, err)
	}
	if !found {
		return chain.Witness{}, fmt.Errorf("load witness %s: %w", hash, ErrWitnessNotFound)
	}
	if got := canonical.Digest(canonical.DomainWitness, data); got != hash {
		return chain.Witness{}, fmt.Errorf("load witness %s: %w (got %s)", hash, ErrHashMismatch, got)
	}
	w, err := chain.DecodeWitness(data)
	if err != nil {
		return chain.Witness{}, fmt.Errorf("load witness %s: %w", hash, err)
	}
	return w, nil
}

// CurrentDetails returns the details referenced by the trade's most recent
// Submit or Update, with their hash.
func (s *Service) CurrentDetails(ctx context.Context, tradeID string) (trade.TradeDetails, string, error) {
	tc, err := s.LoadTrade(ctx, tradeID)
	if err != nil {
		return trade.TradeDetails{}, "", err
	}
	hash, err := tc.LatestDetailsHash()
	if err != nil {
		return trade.TradeDetails{}, "", err
	}
	details, err := s.Details(ctx, hash)
	if err != nil {
		return trade.TradeDetails{}, "", err
	}
	return details, hash, nil
}

// History replays the trade witness by witness. Each entry carries the
// state derived from the chain prefix ending at that witness.
func (s *Service) History(ctx context.Context, tradeID string) ([]HistoryEntry, error) {
	tc, err := s.LoadTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	witnesses := tc.Witnesses()
	entries := make([]HistoryEntry, 0, len(witnesses))
	resolved := make(map[string]*trade.TradeDetails)

	for i, w := range witnesses {
		wh, err := w.Hash()
		if err != nil {
			return nil, fmt.Errorf("history %s: witness %d: %w", tradeID, i, err)
		}
		entry := HistoryEntry{
			Index:       i,
			Witness:     w,
			WitnessHash: wh,
			State:       chain.Derive(witnesses[:i+1]),
		}

		if dh, ok := chain.DetailsHash(w.Action); ok {
			d, seen := resolved[dh]
			if !seen {
				details, err := s.Details(ctx, dh)
				if err != nil {
					return nil, fmt.Errorf("history %s: witness %d: %w", tradeID, i, err)
				}
				d = &details
				resolved[dh] = d
			}
			entry.DetailsHash = dh
			entry.Details = d
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

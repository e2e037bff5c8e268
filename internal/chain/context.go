package chain

import (
	"fmt"
	"slices"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/codec"
	"github.com/roach88/tradewit/internal/ids"
)

// TradeContext binds a stable trade ID to its witness chain. It is the
// aggregate root: witnesses are only ever appended, never removed or
// rewritten. A TradeContext is not safe for concurrent mutation.
type TradeContext struct {
	tradeID   string
	witnesses []Witness
}

type contextWire struct {
	TradeID   string        `cbor:"0,keyasint"`
	Witnesses []witnessWire `cbor:"1,keyasint"`
}

// New creates an empty context with a freshly minted trade ID.
func New(gen ids.Generator) (*TradeContext, error) {
	id, err := ids.New(gen, ids.TradePrefix)
	if err != nil {
		return nil, fmt.Errorf("new trade id: %w", err)
	}
	return NewWith(id), nil
}

// NewWith creates an empty context for an ID minted elsewhere.
func NewWith(tradeID string) *TradeContext {
	return &TradeContext{tradeID: tradeID, witnesses: []Witness{}}
}

func (c *TradeContext) TradeID() string {
	return c.tradeID
}

// Witnesses returns a copy of the chain in insertion order.
func (c *TradeContext) Witnesses() []Witness {
	return slices.Clone(c.witnesses)
}

// Len returns the number of witnesses.
func (c *TradeContext) Len() int {
	return len(c.witnesses)
}

// InsertWitness appends w. It performs no validation; callers check
// preconditions first.
func (c *TradeContext) InsertWitness(w Witness) {
	c.witnesses = append(c.witnesses, w)
}

func (c *TradeContext) CurrentState() State {
	return Derive(c.witnesses)
}

func (c *TradeContext) RequiresApproval() bool {
	return RequiresApproval(c.witnesses)
}

func (c *TradeContext) ExpectedApprover() (string, error) {
	approver, err := ExpectedApprover(c.witnesses)
	if err != nil {
		return "", c.tag(err)
	}
	return approver, nil
}

func (c *TradeContext) LatestDetailsHash() (string, error) {
	h, err := LatestDetailsHash(c.witnesses)
	if err != nil {
		return "", c.tag(err)
	}
	return h, nil
}

func (c *TradeContext) tag(err error) error {
	if we, ok := err.(*WorkflowError); ok {
		we.TradeID = c.tradeID
	}
	return err
}

// Clone returns an independent copy of the context.
func (c *TradeContext) Clone() *TradeContext {
	return &TradeContext{tradeID: c.tradeID, witnesses: slices.Clone(c.witnesses)}
}

// Encode returns the canonical encoding stored under the trade ID.
func (c *TradeContext) Encode() ([]byte, error) {
	wire := contextWire{TradeID: c.tradeID, Witnesses: make([]witnessWire, 0, len(c.witnesses))}
	for i, w := range c.witnesses {
		ww, err := w.toWire()
		if err != nil {
			return nil, fmt.Errorf("encode context: witness %d: %w", i, err)
		}
		wire.Witnesses = append(wire.Witnesses, ww)
	}
	data, err := codec.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	return data, nil
}

// Hash returns the content hash of the encoded context, for audit.
func (c *TradeContext) Hash() (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", err
	}
	return canonical.Digest(canonical.DomainContext, data), nil
}

// DecodeTradeContext decodes a context produced by Encode.
func DecodeTradeContext(data []byte) (*TradeContext, error) {
	var wire contextWire
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if wire.TradeID == "" {
		return nil, fmt.Errorf("decode context: %w", codec.Errorf("missing trade id"))
	}
	c := NewWith(wire.TradeID)
	for i, ww := range wire.Witnesses {
		w, err := ww.toWitness()
		if err != nil {
			return nil, fmt.Errorf("decode context: witness %d: %w", i, err)
		}
		c.witnesses = append(c.witnesses, w)
	}
	return c, nil
}

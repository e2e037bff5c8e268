package chain

import (
	"fmt"
	"time"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/codec"
	"github.com/roach88/tradewit/internal/trade"
)

// Witness is one immutable workflow action taken by a user on a trade.
type Witness struct {
	TradeID   string
	UserID    string
	Timestamp time.Time
	Action    Action
}

// NewWitness builds a witness with a normalized UTC timestamp.
func NewWitness(tradeID, userID string, ts time.Time, action Action) Witness {
	return Witness{
		TradeID:   tradeID,
		UserID:    userID,
		Timestamp: trade.Normalize(ts),
		Action:    action,
	}
}

type witnessWire struct {
	TradeID   string     `cbor:"0,keyasint"`
	UserID    string     `cbor:"1,keyasint"`
	Timestamp int64      `cbor:"2,keyasint"`
	Action    actionWire `cbor:"3,keyasint"`
}

type actionWire struct {
	Kind        ActionKind `cbor:"0,keyasint"`
	DetailsHash string     `cbor:"1,keyasint,omitempty"`
	RequesterID string     `cbor:"2,keyasint,omitempty"`
	ApproverID  string     `cbor:"3,keyasint,omitempty"`
	Strike      *uint64    `cbor:"4,keyasint,omitempty"`
}

// Encode returns the canonical encoding of the witness.
func (w Witness) Encode() ([]byte, error) {
	wire, err := w.toWire()
	if err != nil {
		return nil, err
	}
	data, err := codec.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode witness: %w", err)
	}
	return data, nil
}

// Hash returns the content hash of the encoded witness.
func (w Witness) Hash() (string, error) {
	data, err := w.Encode()
	if err != nil {
		return "", err
	}
	return canonical.Digest(canonical.DomainWitness, data), nil
}

// DecodeWitness decodes a witness produced by Encode.
func DecodeWitness(data []byte) (Witness, error) {
	var wire witnessWire
	if err := codec.Unmarshal(data, &wire); err != nil {
		return Witness{}, fmt.Errorf("decode witness: %w", err)
	}
	return wire.toWitness()
}

func (w Witness) toWire() (witnessWire, error) {
	if !trade.InRange(w.Timestamp) {
		return witnessWire{}, &codec.Error{
			Op:  codec.OpEncode,
			Err: fmt.Errorf("witness timestamp %s outside int64 nanoseconds", w.Timestamp.Format(time.RFC3339)),
		}
	}
	aw, err := encodeAction(w.Action)
	if err != nil {
		return witnessWire{}, err
	}
	return witnessWire{
		TradeID:   w.TradeID,
		UserID:    w.UserID,
		Timestamp: trade.ToUnixNano(w.Timestamp),
		Action:    aw,
	}, nil
}

func (wire witnessWire) toWitness() (Witness, error) {
	action, err := decodeAction(wire.Action)
	if err != nil {
		return Witness{}, err
	}
	return Witness{
		TradeID:   wire.TradeID,
		UserID:    wire.UserID,
		Timestamp: trade.FromUnixNano(wire.Timestamp),
		Action:    action,
	}, nil
}

func encodeAction(a Action) (actionWire, error) {
	var w actionWire
	switch a := a.(type) {
	case Submit:
		w = actionWire{
			Kind:        KindSubmit,
			DetailsHash: a.DetailsHash,
			RequesterID: a.RequesterID,
			ApproverID:  a.ApproverID,
		}
	case Update:
		w = actionWire{Kind: KindUpdate, DetailsHash: a.DetailsHash}
	case Book:
		strike := a.Strike
		w = actionWire{Kind: KindBook, Strike: &strike}
	case Approve, Cancel, SendToExecute:
		w = actionWire{Kind: a.Kind()}
	default:
		return actionWire{}, &codec.Error{Op: codec.OpEncode, Err: fmt.Errorf("unsupported action %T", a)}
	}
	if err := checkFields(codec.OpEncode, w); err != nil {
		return actionWire{}, err
	}
	return w, nil
}

func decodeAction(w actionWire) (Action, error) {
	if err := checkFields(codec.OpDecode, w); err != nil {
		return nil, err
	}

	switch w.Kind {
	case KindSubmit:
		return Submit{DetailsHash: w.DetailsHash, RequesterID: w.RequesterID, ApproverID: w.ApproverID}, nil
	case KindApprove:
		return Approve{}, nil
	case KindCancel:
		return Cancel{}, nil
	case KindUpdate:
		return Update{DetailsHash: w.DetailsHash}, nil
	case KindSendToExecute:
		return SendToExecute{}, nil
	case KindBook:
		return Book{Strike: *w.Strike}, nil
	default:
		return nil, codec.Errorf("unknown action kind %d", uint8(w.Kind))
	}
}

// checkFields enforces the payload fields each kind carries, on encode and
// decode alike.
func checkFields(op codec.Op, w actionWire) error {
	if w.Kind > KindBook {
		return &codec.Error{Op: op, Err: fmt.Errorf("unknown action kind %d", uint8(w.Kind))}
	}
	var (
		needHash     = w.Kind == KindSubmit || w.Kind == KindUpdate
		needAccounts = w.Kind == KindSubmit
		needStrike   = w.Kind == KindBook
	)
	fields := []struct {
		name       string
		has, needs bool
	}{
		{"details_hash", w.DetailsHash != "", needHash},
		{"requester_id", w.RequesterID != "", needAccounts},
		{"approver_id", w.ApproverID != "", needAccounts},
		{"strike", w.Strike != nil, needStrike},
	}
	for _, f := range fields {
		switch {
		case f.needs && !f.has:
			return &codec.Error{Op: op, Err: fmt.Errorf("action %s: missing %s", w.Kind, f.name)}
		case !f.needs && f.has:
			return &codec.Error{Op: op, Err: fmt.Errorf("action %s: unexpected %s", w.Kind, f.name)}
		}
	}
	return nil
}

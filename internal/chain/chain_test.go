package chain

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tradewit/internal/canonical"
	"github.com/roach88/tradewit/internal/codec"
	"github.com/roach88/tradewit/internal/ids"
)

const (
	testTrade    = "trade_1test"
	testHash     = "aa11"
	testHash2    = "bb22"
	testApprover = "user_approver"
)

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// build turns a list of actions into witnesses one second apart.
func build(actions ...Action) []Witness {
	out := make([]Witness, len(actions))
	for i, a := range actions {
		out[i] = NewWitness(testTrade, "user_x", epoch.Add(time.Duration(i)*time.Second), a)
	}
	return out
}

func submit() Action { return Submit{DetailsHash: testHash, RequesterID: "user_req", ApproverID: testApprover} }
func update() Action { return Update{DetailsHash: testHash2} }

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		want    State
	}{
		{"empty", nil, Draft},
		{"submit", []Action{submit()}, PendingApproval},
		{"submit approve", []Action{submit(), Approve{}}, Approved},
		{"submit approve update", []Action{submit(), Approve{}, update()}, PendingApproval},
		{"submit approve update approve", []Action{submit(), Approve{}, update(), Approve{}}, Approved},
		{"double approve", []Action{submit(), Approve{}, Approve{}}, Approved},
		{"submit approve execute", []Action{submit(), Approve{}, SendToExecute{}}, SentToExecute},
		{"execute then update", []Action{submit(), Approve{}, SendToExecute{}, update()}, PendingApproval},
		{"update then execute", []Action{submit(), update(), SendToExecute{}}, SentToExecute},
		{"book", []Action{submit(), Approve{}, SendToExecute{}, Book{Strike: 1_000_040}}, Booked},
		{"cancel pending", []Action{submit(), Cancel{}}, Cancelled},
		{"cancel then book", []Action{submit(), Cancel{}, Book{Strike: 1}}, Cancelled},
		{"book then cancel", []Action{submit(), Book{Strike: 1}, Cancel{}}, Booked},
		{"cancel first of all", []Action{Cancel{}, submit()}, Cancelled},
		{"approve only", []Action{Approve{}}, Draft},
		{"approve before submit", []Action{Approve{}, submit()}, PendingApproval},
		{"update only", []Action{update()}, PendingApproval},
		{"execute only", []Action{SendToExecute{}}, SentToExecute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(build(tt.actions...)))
		})
	}
}

func TestDeriveIgnoresNilAction(t *testing.T) {
	ws := build(submit())
	ws = append(ws, Witness{TradeID: testTrade})
	assert.Equal(t, PendingApproval, Derive(ws))
	assert.Equal(t, Draft, Derive([]Witness{{}}))
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	ws := build(submit(), Approve{}, update())
	before := make([]Witness, len(ws))
	copy(before, ws)

	Derive(ws)
	assert.Equal(t, before, ws)
}

func TestRequiresApproval(t *testing.T) {
	assert.False(t, RequiresApproval(nil))
	assert.True(t, RequiresApproval(build(submit())))
	assert.False(t, RequiresApproval(build(submit(), Approve{})))
	assert.True(t, RequiresApproval(build(submit(), Approve{}, update())))
}

func TestExpectedApprover(t *testing.T) {
	got, err := ExpectedApprover(build(submit(), Approve{}, update()))
	require.NoError(t, err)
	assert.Equal(t, testApprover, got)

	second := Submit{DetailsHash: testHash2, RequesterID: "user_req", ApproverID: "user_other"}
	got, err = ExpectedApprover(build(submit(), update(), second, update()))
	require.NoError(t, err)
	assert.Equal(t, "user_other", got)

	_, err = ExpectedApprover(build(update(), Approve{}))
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeMissingSubmit))

	_, err = ExpectedApprover(nil)
	assert.True(t, IsWorkflowError(err))
}

func TestLatestDetailsHash(t *testing.T) {
	got, err := LatestDetailsHash(build(submit()))
	require.NoError(t, err)
	assert.Equal(t, testHash, got)

	got, err = LatestDetailsHash(build(submit(), Approve{}, update(), Approve{}))
	require.NoError(t, err)
	assert.Equal(t, testHash2, got)

	_, err = LatestDetailsHash(build(Approve{}))
	assert.True(t, IsCode(err, CodeMissingSubmit))
}

func TestStateStringAndParse(t *testing.T) {
	for s := Draft; s <= Booked; s++ {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseState("Executed")
	assert.Error(t, err)
	assert.Equal(t, "State(42)", State(42).String())
	assert.True(t, Booked.Terminal())
	assert.True(t, Cancelled.Terminal())
	assert.False(t, SentToExecute.Terminal())
}

func TestWorkflowErrorMessage(t *testing.T) {
	err := WrongState("trade_1abc", Approved, PendingApproval)
	assert.Equal(t, "WRONG_STATE: expected Approved, got PendingApproval (trade=trade_1abc)", err.Error())
	assert.True(t, IsCode(err, CodeWrongState))
	assert.False(t, IsCode(err, CodeApproverMismatch))
	assert.False(t, IsCode(assert.AnError, CodeWrongState))
}

func TestWitnessRoundTrip(t *testing.T) {
	actions := []Action{submit(), Approve{}, update(), Cancel{}, SendToExecute{}, Book{Strike: 0}, Book{Strike: 1_000_040}}
	for _, a := range actions {
		t.Run(a.Kind().String(), func(t *testing.T) {
			w := NewWitness(testTrade, "user_x", epoch.Add(123*time.Nanosecond), a)

			data, err := w.Encode()
			require.NoError(t, err)

			decoded, err := DecodeWitness(data)
			require.NoError(t, err)
			assert.Equal(t, w.Action, decoded.Action)
			assert.True(t, w.Timestamp.Equal(decoded.Timestamp))

			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, data, again)

			h1, err := w.Hash()
			require.NoError(t, err)
			h2, err := decoded.Hash()
			require.NoError(t, err)
			assert.Equal(t, h1, h2)
			assert.True(t, canonical.IsDigest(h1))
		})
	}
}

func TestWitnessHashDiffersByField(t *testing.T) {
	base := NewWitness(testTrade, "user_x", epoch, Approve{})
	h, err := base.Hash()
	require.NoError(t, err)

	variants := []Witness{
		NewWitness("trade_1other", "user_x", epoch, Approve{}),
		NewWitness(testTrade, "user_y", epoch, Approve{}),
		NewWitness(testTrade, "user_x", epoch.Add(time.Nanosecond), Approve{}),
		NewWitness(testTrade, "user_x", epoch, Cancel{}),
	}
	for _, v := range variants {
		vh, err := v.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, h, vh)
	}
}

func TestWitnessEncodeRejectsNilAction(t *testing.T) {
	_, err := Witness{TradeID: testTrade, Timestamp: epoch}.Encode()
	require.Error(t, err)
	assert.True(t, codec.IsCodecError(err))
}

func TestWitnessEncodeRejectsOutOfRangeTime(t *testing.T) {
	w := NewWitness(testTrade, "user_x", time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC), Approve{})
	_, err := w.Encode()
	assert.True(t, codec.IsCodecError(err))
}

func TestDecodeActionRejectsMisplacedFields(t *testing.T) {
	strike := uint64(5)
	tests := []struct {
		name string
		wire actionWire
	}{
		{"approve with hash", actionWire{Kind: KindApprove, DetailsHash: "x"}},
		{"submit without approver", actionWire{Kind: KindSubmit, DetailsHash: "x", RequesterID: "r"}},
		{"update with approver", actionWire{Kind: KindUpdate, DetailsHash: "x", ApproverID: "a"}},
		{"update without hash", actionWire{Kind: KindUpdate}},
		{"book without strike", actionWire{Kind: KindBook}},
		{"cancel with strike", actionWire{Kind: KindCancel, Strike: &strike}},
		{"unknown kind", actionWire{Kind: ActionKind(9)}},
		{"unknown kind with hash", actionWire{Kind: ActionKind(9), DetailsHash: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := codec.Marshal(witnessWire{TradeID: testTrade, UserID: "u", Action: tt.wire})
			require.NoError(t, err)

			_, err = DecodeWitness(data)
			require.Error(t, err)
			assert.True(t, codec.IsCodecError(err))
		})
	}
}

func TestWitnessEncodeRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		message string
	}{
		{"submit without requester", Submit{DetailsHash: "abc", ApproverID: "user_b"}, "missing requester_id"},
		{"submit without approver", Submit{DetailsHash: "abc", RequesterID: "user_a"}, "missing approver_id"},
		{"submit without hash", Submit{RequesterID: "user_a", ApproverID: "user_b"}, "missing details_hash"},
		{"update without hash", Update{}, "missing details_hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWitness(testTrade, "user_a", time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC), tt.action)
			_, err := w.Encode()
			require.Error(t, err)
			var ce *codec.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, codec.OpEncode, ce.Op)
			assert.Contains(t, err.Error(), tt.message)

			c := NewWith(testTrade)
			c.InsertWitness(w)
			_, err = c.Encode()
			assert.True(t, codec.IsCodecError(err))
		})
	}
}

func TestDecodeActionNamesMissingAndUnexpectedFields(t *testing.T) {
	data, err := codec.Marshal(witnessWire{TradeID: testTrade, UserID: "u",
		Action: actionWire{Kind: KindSubmit, DetailsHash: "x", ApproverID: "a"}})
	require.NoError(t, err)
	_, err = DecodeWitness(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action Submit: missing requester_id")

	data, err = codec.Marshal(witnessWire{TradeID: testTrade, UserID: "u",
		Action: actionWire{Kind: KindApprove, RequesterID: "r"}})
	require.NoError(t, err)
	_, err = DecodeWitness(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action Approve: unexpected requester_id")
}

func TestTradeContextNew(t *testing.T) {
	gen := ids.NewFixedUUIDGenerator("01906f6e-8f00-7000-8000-000000000001")
	c, err := New(gen)
	require.NoError(t, err)

	assert.True(t, ids.HasPrefix(c.TradeID(), ids.TradePrefix))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Draft, c.CurrentState())
	assert.False(t, c.RequiresApproval())
}

func TestTradeContextWorkflow(t *testing.T) {
	c := NewWith(testTrade)

	c.InsertWitness(NewWitness(testTrade, "user_req", epoch, submit()))
	assert.Equal(t, PendingApproval, c.CurrentState())
	assert.True(t, c.RequiresApproval())

	approver, err := c.ExpectedApprover()
	require.NoError(t, err)
	assert.Equal(t, testApprover, approver)

	c.InsertWitness(NewWitness(testTrade, testApprover, epoch.Add(time.Second), Approve{}))
	assert.Equal(t, Approved, c.CurrentState())

	c.InsertWitness(NewWitness(testTrade, "user_req", epoch.Add(2*time.Second), update()))
	assert.Equal(t, PendingApproval, c.CurrentState())

	h, err := c.LatestDetailsHash()
	require.NoError(t, err)
	assert.Equal(t, testHash2, h)
	assert.Equal(t, 3, c.Len())
}

func TestTradeContextErrorsCarryTradeID(t *testing.T) {
	c := NewWith(testTrade)
	_, err := c.ExpectedApprover()

	var we *WorkflowError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, testTrade, we.TradeID)
	assert.Equal(t, CodeMissingSubmit, we.Code)
}

func TestTradeContextWitnessesIsCopy(t *testing.T) {
	c := NewWith(testTrade)
	c.InsertWitness(NewWitness(testTrade, "u", epoch, submit()))

	ws := c.Witnesses()
	ws[0] = NewWitness(testTrade, "u", epoch, Cancel{})
	assert.Equal(t, PendingApproval, c.CurrentState())

	clone := c.Clone()
	clone.InsertWitness(NewWitness(testTrade, "u", epoch, Cancel{}))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, Cancelled, clone.CurrentState())
}

func TestTradeContextRoundTrip(t *testing.T) {
	c := NewWith(testTrade)
	for _, w := range build(submit(), Approve{}, update(), Approve{}, SendToExecute{}, Book{Strike: 1_000_040}) {
		c.InsertWitness(w)
	}

	data, err := c.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTradeContext(data)
	require.NoError(t, err)
	assert.Equal(t, c.TradeID(), decoded.TradeID())
	assert.Equal(t, c.CurrentState(), decoded.CurrentState())

	again, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	h1, err := c.Hash()
	require.NoError(t, err)
	h2, err := decoded.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestEmptyContextRoundTrip(t *testing.T) {
	data, err := NewWith(testTrade).Encode()
	require.NoError(t, err)

	decoded, err := DecodeTradeContext(data)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
	assert.Equal(t, Draft, decoded.CurrentState())
}

func TestDecodeTradeContextErrors(t *testing.T) {
	_, err := DecodeTradeContext([]byte{0xa0})
	assert.True(t, codec.IsCodecError(err))

	_, err = DecodeTradeContext(nil)
	assert.True(t, codec.IsCodecError(err))
}

// randomChain builds a chain of n random actions.
func randomChain(r *rand.Rand, n int) []Witness {
	actions := make([]Action, n)
	for i := range actions {
		switch r.IntN(6) {
		case 0:
			actions[i] = submit()
		case 1:
			actions[i] = Approve{}
		case 2:
			actions[i] = update()
		case 3:
			actions[i] = SendToExecute{}
		case 4:
			actions[i] = Cancel{}
		default:
			actions[i] = Book{Strike: r.Uint64()}
		}
	}
	return build(actions...)
}

func TestDeriveProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 1000; i++ {
		ws := randomChain(r, r.IntN(12))
		state := Derive(ws)

		assert.Equal(t, state, Derive(ws), "derive must be idempotent")

		// The first terminal witness fixes the state for any extension.
		for _, w := range ws {
			var want State
			switch w.Action.(type) {
			case Book:
				want = Booked
			case Cancel:
				want = Cancelled
			default:
				continue
			}
			assert.Equal(t, want, state)
			extended := append(ws[:len(ws):len(ws)], randomChain(r, 3)...)
			assert.Equal(t, want, Derive(extended))
			break
		}

		if !state.Terminal() {
			withSubmit := append(ws[:len(ws):len(ws)], build(submit(), Approve{})...)
			assert.Equal(t, Approved, Derive(withSubmit))
			withUpdate := append(withSubmit, build(update())...)
			assert.Equal(t, PendingApproval, Derive(withUpdate))
			reapproved := append(withUpdate, build(Approve{})...)
			assert.Equal(t, Approved, Derive(reapproved))
		}

		c := NewWith(testTrade)
		for _, w := range ws {
			c.InsertWitness(w)
		}
		data, err := c.Encode()
		require.NoError(t, err)
		decoded, err := DecodeTradeContext(data)
		require.NoError(t, err)
		assert.Equal(t, state, decoded.CurrentState())
	}
}

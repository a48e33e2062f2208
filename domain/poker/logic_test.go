package poker

import (
	"encoding/json"
	"testing"
	"time"

	"game-lab/domain"
	"game-lab/errors"

	"github.com/stretchr/testify/require"
)

var (
	alice = domain.User{ID: "u-alice", Name: "alice"}
	bob   = domain.User{ID: "u-bob", Name: "bob"}
	carol = domain.User{ID: "u-carol", Name: "carol"}
)

type table struct {
	t      *testing.T
	logic  Logic
	stream *domain.Stream
	state  *State
}

func newTable(t *testing.T, seed int64) *table {
	t.Helper()
	logic := New()
	stream := domain.NewStream(seed)
	state, err := logic.Create(alice, domain.NewContext(stream, time.Now()), nil)
	require.NoError(t, err)
	return &table{t: t, logic: logic, stream: stream, state: state}
}

func (tb *table) do(user domain.User, method string, args string) domain.Result {
	tb.t.Helper()
	cmd, err := tb.logic.Decode(method, []byte(args))
	require.NoError(tb.t, err)
	return tb.logic.Execute(tb.state, user, domain.NewContext(tb.stream, time.Now()), cmd)
}

func (tb *table) view(user domain.User) GameState {
	return tb.logic.Project(tb.state, user).(GameState)
}

func (tb *table) started() {
	tb.t.Helper()
	require.True(tb.t, tb.do(bob, MethodJoinGame, "").IsModified())
	require.True(tb.t, tb.do(alice, MethodStartGame, `{"startingBlind":5,"startingChipsPerPlayer":100}`).IsModified())
	require.True(tb.t, tb.do(alice, MethodStartRound, "{}").IsModified())
}

func TestDecode_UnknownMethod(t *testing.T) {
	req := require.New(t)
	_, err := Decode("dance", nil)
	req.ErrorIs(err, errors.ErrUnknownMethod)
}

func TestDecode_MalformedArgs(t *testing.T) {
	req := require.New(t)

	_, err := Decode(MethodRaise, []byte(`{"raiseAmount":"lots"}`))
	req.ErrorIs(err, errors.ErrMalformedArgs)

	_, err = Decode(MethodRaise, []byte(`{"raiseAmount":0}`))
	req.ErrorIs(err, errors.ErrMalformedArgs)

	_, err = Decode(MethodStartGame, []byte(`{"startingBlind":5}`))
	req.ErrorIs(err, errors.ErrMalformedArgs)

	_, err = Decode(MethodCall, []byte(`not json`))
	req.ErrorIs(err, errors.ErrMalformedArgs)
}

func TestDecode_JoinAlias(t *testing.T) {
	req := require.New(t)
	cmd, err := Decode(MethodJoin, []byte("null"))
	req.NoError(err)
	req.IsType(&JoinGame{}, cmd)
	req.Equal(MethodJoinGame, cmd.Method())
}

func TestJoinGame_Twice(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 1)

	req.True(tb.do(bob, MethodJoinGame, "").IsModified())
	res := tb.do(bob, MethodJoin, "")
	req.False(res.IsModified())
	req.Equal(ReasonAlreadyJoined, res.Reason())
	req.Len(tb.state.Players, 2)
}

func TestStartGame_Rejections(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 1)
	args := `{"startingBlind":5,"startingChipsPerPlayer":100}`

	req.Equal(ReasonNotEnoughPlayer, tb.do(alice, MethodStartGame, args).Reason())
	req.Equal(ReasonNotStarted, tb.do(alice, MethodStartRound, "").Reason())
	req.Equal(ReasonNotStarted, tb.do(alice, MethodCall, "").Reason())

	req.True(tb.do(bob, MethodJoinGame, "").IsModified())
	req.Equal(ReasonNotAPlayer, tb.do(carol, MethodStartGame, args).Reason())
	req.True(tb.do(alice, MethodStartGame, args).IsModified())
	req.Equal(ReasonInProgress, tb.do(bob, MethodStartGame, args).Reason())

	for _, p := range tb.state.Players {
		req.Equal(100, p.Chips)
	}
}

func TestStartRound_PostsBlinds(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 3)
	tb.started()

	view := tb.view(alice)
	req.Equal(PreFlop, view.RoundStatus)
	req.Equal(15, view.CurrentPot)
	req.Equal(10, view.AmountToCall)
	req.Equal("bob", view.Dealer)
	req.Equal("alice", view.ActivePlayer)
	req.Equal(ReasonRoundInProgress, tb.do(alice, MethodStartRound, "").Reason())
	req.Len(tb.state.Deck, 52-4)
}

func TestTurnOrder(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 3)
	tb.started()

	req.Equal(ReasonNotYourTurn, tb.do(bob, MethodCall, "").Reason())
	req.Equal(ReasonNotAPlayer, tb.do(carol, MethodCall, "").Reason())
	req.Equal(ReasonNotEnoughChips, tb.do(alice, MethodRaise, `{"raiseAmount":1000}`).Reason())
	req.True(tb.do(alice, MethodCall, "").IsModified())
	req.Equal(ReasonNotYourTurn, tb.do(alice, MethodCall, "").Reason())
}

func TestFullHand_ReachesShowdown(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 11)
	tb.started()

	// Pre-flop: alice completes the big blind.
	req.True(tb.do(alice, MethodCall, "").IsModified())
	req.Equal(Flop, tb.state.RoundStatus)
	req.Len(tb.state.RevealedCards, 3)

	streets := []RoundStatus{Turn, River, Done}
	for _, next := range streets {
		req.True(tb.do(bob, MethodCall, "").IsModified())
		req.True(tb.do(alice, MethodCall, "").IsModified())
		req.Equal(next, tb.state.RoundStatus)
	}
	req.Len(tb.state.RevealedCards, 5)
	req.NotEmpty(tb.state.Winners)

	total := 0
	for _, p := range tb.state.Players {
		total += p.Chips
	}
	req.Equal(200, total)
	req.Equal(ReasonGameOver, tb.do(alice, MethodCall, "").Reason())

	// Both hands are revealed at showdown.
	for _, p := range tb.view(carol).Players {
		req.Len(p.Cards, 2)
	}
}

func TestFold_AwardsPot(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 5)
	tb.started()

	req.True(tb.do(alice, MethodFold, "").IsModified())
	req.Equal(Done, tb.state.RoundStatus)
	req.Equal([]string{"bob"}, tb.state.Winners)
	req.Equal(95, tb.state.player(alice.ID).Chips)
	req.Equal(105, tb.state.player(bob.ID).Chips)

	// The folded hand stays hidden from others, the winner's is shown.
	for _, p := range tb.view(bob).Players {
		if p.ID == alice.ID {
			req.Empty(p.Cards)
		}
	}
	for _, p := range tb.view(alice).Players {
		req.Len(p.Cards, 2)
	}

	// A new round can be dealt after the hand.
	req.True(tb.do(bob, MethodStartRound, "").IsModified())
	req.Equal(PreFlop, tb.state.RoundStatus)
	req.Empty(tb.state.Winners)
}

func TestProject_RedactsOtherHoleCards(t *testing.T) {
	req := require.New(t)
	tb := newTable(t, 9)
	tb.started()

	view := tb.view(alice)
	for _, p := range view.Players {
		if p.ID == alice.ID {
			req.Len(p.Cards, 2)
		} else {
			req.Empty(p.Cards)
		}
	}

	// Mutating a projection never reaches the state.
	view.Players[0].Cards = append(view.Players[0].Cards, Card{Rank: Ace, Suit: Spades})
	req.Len(tb.state.Players[0].Cards, 2)

	raw, err := json.Marshal(tb.view(bob))
	req.NoError(err)
	req.Contains(string(raw), `"roundStatus":"PRE_FLOP"`)
	req.Contains(string(raw), `"cards":[]`)
}

func TestSameSeedDealsSameCards(t *testing.T) {
	req := require.New(t)
	left := newTable(t, 2024)
	right := newTable(t, 2024)
	left.started()
	right.started()

	req.Equal(left.state.Deck, right.state.Deck)
	req.Equal(left.view(alice), right.view(alice))
	req.Equal(left.view(bob), right.view(bob))

	other := newTable(t, 2025)
	other.started()
	req.NotEqual(left.state.Deck, other.state.Deck)
}

package poker

import (
	"game-lab/contract"
	"game-lab/domain"
)

const (
	ReasonAlreadyJoined   = "User already joined"
	ReasonInProgress      = "Game already in-progress."
	ReasonNotEnoughPlayer = "Must have 2 players to start."
	ReasonNotStarted      = "Game not started."
	ReasonRoundInProgress = "Round in-progress."
	ReasonGameOver        = "Game is over"
	ReasonNotYourTurn     = "Not your turn"
	ReasonNotAPlayer      = "Not a player"
	ReasonNotEnoughChips  = "Not enough chips"
)

// Logic is a Texas hold'em table. Players are identified by user id.
type Logic struct{}

var _ contract.Logic[*State] = Logic{}

func New() Logic {
	return Logic{}
}

func (Logic) Create(user domain.User, _ *domain.Context, args []byte) (*State, error) {
	if err := unmarshalArgs(args, &CreateGame{}); err != nil {
		return nil, err
	}
	return &State{
		Players:       []*Player{newPlayer(user.ID, user.Name)},
		RoundStatus:   Waiting,
		RevealedCards: []Card{},
	}, nil
}

func (Logic) Decode(method string, args []byte) (domain.Command, error) {
	return Decode(method, args)
}

func (Logic) Execute(state *State, user domain.User, ctx *domain.Context, cmd domain.Command) domain.Result {
	switch c := cmd.(type) {
	case *JoinGame:
		return joinGame(state, user)
	case *StartGame:
		return startGame(state, user, c)
	case *StartRound:
		return startRound(state, user, ctx)
	case *Call:
		return call(state, user)
	case *Raise:
		return raise(state, user, c)
	case *Fold:
		return fold(state, user)
	default:
		return domain.Unmodified("")
	}
}

func joinGame(state *State, user domain.User) domain.Result {
	if state.player(user.ID) != nil {
		return domain.Unmodified(ReasonAlreadyJoined)
	}
	if state.RoundStatus != Waiting && state.RoundStatus != Done {
		return domain.Unmodified(ReasonInProgress)
	}
	p := newPlayer(user.ID, user.Name)
	p.Chips = state.startingChips()
	state.Players = append(state.Players, p)
	return domain.Modified()
}

func startGame(state *State, user domain.User, cmd *StartGame) domain.Result {
	if state.RoundStatus != Waiting || state.started() {
		return domain.Unmodified(ReasonInProgress)
	}
	if state.player(user.ID) == nil {
		return domain.Unmodified(ReasonNotAPlayer)
	}
	if len(state.Players) < 2 {
		return domain.Unmodified(ReasonNotEnoughPlayer)
	}
	for _, p := range state.Players {
		p.Chips = cmd.StartingChipsPerPlayer
	}
	state.CurrentBlind = cmd.StartingBlind
	state.ChipsPerPlayer = cmd.StartingChipsPerPlayer
	return domain.Modified()
}

func startRound(state *State, user domain.User, ctx *domain.Context) domain.Result {
	if !state.started() {
		return domain.Unmodified(ReasonNotStarted)
	}
	if state.RoundStatus != Waiting && state.RoundStatus != Done {
		return domain.Unmodified(ReasonRoundInProgress)
	}
	if state.player(user.ID) == nil {
		return domain.Unmodified(ReasonNotAPlayer)
	}

	state.Deck = newDeck()
	shuffle(state.Deck, ctx.RandIntn)

	state.DealerIndex = (state.DealerIndex + 1) % len(state.Players)
	state.ActivePlayerIndex = (state.DealerIndex + 1) % len(state.Players)
	state.CurrentPot = 0
	state.AmountToCall = 0
	state.RevealedCards = []Card{}
	state.Winners = nil
	for _, p := range state.Players {
		p.CurrentBet = 0
		p.Status = PlayerWaiting
		p.Cards = state.draw(2)
	}

	state.raiseBet(state.CurrentBlind)
	state.raiseBet(state.CurrentBlind * 2)

	state.RoundStatus = PreFlop
	return domain.Modified()
}

// turnCheck is shared by call, raise and fold.
func turnCheck(state *State, user domain.User) (*Player, string) {
	switch state.RoundStatus {
	case Done:
		return nil, ReasonGameOver
	case Waiting:
		return nil, ReasonNotStarted
	}
	if state.player(user.ID) == nil {
		return nil, ReasonNotAPlayer
	}
	active := state.active()
	if active.ID != user.ID {
		return nil, ReasonNotYourTurn
	}
	return active, ""
}

func call(state *State, user domain.User) domain.Result {
	active, reason := turnCheck(state, user)
	if reason != "" {
		return domain.Unmodified(reason)
	}
	state.makeBet(state.AmountToCall - active.CurrentBet)
	state.maybeNextStreet()
	return domain.Modified()
}

func raise(state *State, user domain.User, cmd *Raise) domain.Result {
	active, reason := turnCheck(state, user)
	if reason != "" {
		return domain.Unmodified(reason)
	}
	if cmd.RaiseAmount > active.Chips {
		return domain.Unmodified(ReasonNotEnoughChips)
	}
	state.raiseBet(cmd.RaiseAmount)
	state.maybeNextStreet()
	return domain.Modified()
}

func fold(state *State, user domain.User) domain.Result {
	active, reason := turnCheck(state, user)
	if reason != "" {
		return domain.Unmodified(reason)
	}
	active.Status = PlayerFolded
	state.advance()
	state.maybeNextStreet()
	return domain.Modified()
}

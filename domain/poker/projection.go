package poker

import (
	"game-lab/domain"

	"github.com/samber/lo"
)

type PlayerView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Chips      int          `json:"chips"`
	Cards      []Card       `json:"cards"`
	CurrentBet int          `json:"currentBet"`
	Status     PlayerStatus `json:"currentStatus"`
}

// GameState is what one viewer is allowed to see of the table.
type GameState struct {
	Players       []PlayerView `json:"players"`
	Dealer        string       `json:"dealer"`
	ActivePlayer  string       `json:"activePlayer"`
	CurrentPot    int          `json:"currentPot"`
	AmountToCall  int          `json:"amountToCall"`
	RoundStatus   RoundStatus  `json:"roundStatus"`
	RevealedCards []Card       `json:"revealedCards"`
	Winners       []string     `json:"winners,omitempty"`
}

// Project hides the hole cards of other players until a showdown reveals them.
func (Logic) Project(state *State, user domain.User) any {
	return GameState{
		Players: lo.Map(state.Players, func(p *Player, _ int) PlayerView {
			return sanitize(p, user.ID, state.RoundStatus)
		}),
		Dealer:        state.Players[state.DealerIndex%len(state.Players)].Name,
		ActivePlayer:  state.active().Name,
		CurrentPot:    state.CurrentPot,
		AmountToCall:  state.AmountToCall,
		RoundStatus:   state.RoundStatus,
		RevealedCards: append([]Card{}, state.RevealedCards...),
		Winners:       append([]string(nil), state.Winners...),
	}
}

func sanitize(p *Player, viewerID string, status RoundStatus) PlayerView {
	view := PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		Chips:      p.Chips,
		Cards:      []Card{},
		CurrentBet: p.CurrentBet,
		Status:     p.Status,
	}
	if p.ID == viewerID || (status == Done && p.Status != PlayerFolded) {
		view.Cards = append(view.Cards, p.Cards...)
	}
	return view
}

package poker

type RoundStatus int

const (
	Waiting RoundStatus = iota
	PreFlop
	Flop
	Turn
	River
	Done
)

var roundStatusNames = [...]string{"WAITING", "PRE_FLOP", "FLOP", "TURN", "RIVER", "DONE"}

func (s RoundStatus) String() string {
	if int(s) < len(roundStatusNames) {
		return roundStatusNames[s]
	}
	return "UNKNOWN"
}

func (s RoundStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type PlayerStatus int

const (
	PlayerWaiting PlayerStatus = iota
	PlayerPlayed
	PlayerFolded
)

var playerStatusNames = [...]string{"WAITING", "PLAYED", "FOLDED"}

func (s PlayerStatus) String() string {
	if int(s) < len(playerStatusNames) {
		return playerStatusNames[s]
	}
	return "UNKNOWN"
}

func (s PlayerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Player struct {
	ID         string
	Name       string
	Chips      int
	Cards      []Card
	CurrentBet int
	Status     PlayerStatus
}

// State is the authoritative table. It is only touched by the room worker.
type State struct {
	Players           []*Player
	RoundStatus       RoundStatus
	Deck              []Card
	DealerIndex       int
	ActivePlayerIndex int
	RevealedCards     []Card
	CurrentBlind      int
	ChipsPerPlayer    int
	CurrentPot        int
	AmountToCall      int
	Winners           []string
}

func newPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Cards: []Card{}}
}

func (s *State) player(userID string) *Player {
	for _, p := range s.Players {
		if p.ID == userID {
			return p
		}
	}
	return nil
}

func (s *State) active() *Player {
	return s.Players[s.ActivePlayerIndex%len(s.Players)]
}

func (s *State) started() bool {
	return s.CurrentBlind > 0
}

func (s *State) startingChips() int {
	return s.ChipsPerPlayer
}

func (s *State) draw(n int) []Card {
	if n > len(s.Deck) {
		n = len(s.Deck)
	}
	cards := append([]Card(nil), s.Deck[:n]...)
	s.Deck = s.Deck[n:]
	return cards
}

func (s *State) remaining() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.Status != PlayerFolded {
			out = append(out, p)
		}
	}
	return out
}

// advance moves the turn to the next player who has not folded.
func (s *State) advance() {
	for i := 0; i < len(s.Players); i++ {
		s.ActivePlayerIndex = (s.ActivePlayerIndex + 1) % len(s.Players)
		if s.active().Status != PlayerFolded {
			return
		}
	}
}

func (s *State) makeBet(amount int) {
	p := s.active()
	p.CurrentBet += amount
	p.Chips -= amount
	s.CurrentPot += amount
	s.AmountToCall = p.CurrentBet
	p.Status = PlayerPlayed
	s.advance()
}

// raiseBet reopens the action for every other player still in the hand.
func (s *State) raiseBet(amount int) {
	bettor := s.active()
	s.makeBet(amount)
	for _, p := range s.Players {
		if p != bettor && p.Status != PlayerFolded {
			p.Status = PlayerWaiting
		}
	}
}

// maybeNextStreet ends the hand when one player remains, or moves to the next street
// once every remaining player has acted.
func (s *State) maybeNextStreet() {
	remaining := s.remaining()
	if len(remaining) == 1 {
		s.award(remaining)
		return
	}
	for _, p := range remaining {
		if p.Status != PlayerPlayed {
			return
		}
	}
	if s.RoundStatus == River {
		s.showdown(remaining)
		return
	}

	for i := 0; i < len(s.Players); i++ {
		idx := (s.DealerIndex + i) % len(s.Players)
		if s.Players[idx].Status != PlayerFolded {
			s.ActivePlayerIndex = idx
			break
		}
	}
	for _, p := range s.Players {
		p.CurrentBet = 0
		if p.Status != PlayerFolded {
			p.Status = PlayerWaiting
		}
	}
	s.AmountToCall = 0
	switch s.RoundStatus {
	case PreFlop:
		s.RevealedCards = s.draw(3)
	case Flop, Turn:
		s.RevealedCards = append(s.RevealedCards, s.draw(1)...)
	}
	s.RoundStatus++
}

func (s *State) showdown(remaining []*Player) {
	var best Score
	var winners []*Player
	for _, p := range remaining {
		score := BestScore(append(append([]Card{}, p.Cards...), s.RevealedCards...))
		switch {
		case score > best:
			best = score
			winners = []*Player{p}
		case score == best:
			winners = append(winners, p)
		}
	}
	s.award(winners)
}

// award splits the pot evenly; the odd chips go to the first winner in seat order.
func (s *State) award(winners []*Player) {
	share := s.CurrentPot / len(winners)
	odd := s.CurrentPot % len(winners)
	s.Winners = s.Winners[:0]
	for i, w := range winners {
		w.Chips += share
		if i == 0 {
			w.Chips += odd
		}
		s.Winners = append(s.Winners, w.Name)
	}
	s.CurrentPot = 0
	s.RoundStatus = Done
}

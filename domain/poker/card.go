package poker

import "fmt"

type Suit byte

const (
	Clubs    Suit = 'c'
	Diamonds Suit = 'd'
	Hearts   Suit = 'h'
	Spades   Suit = 's'
)

var suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Rank goes from 2 to 14 (ace high).
type Rank int

const (
	Two   Rank = 2
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankNames = map[Rank]string{Ten: "T", Jack: "J", Queen: "Q", King: "K", Ace: "A"}

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	if name, ok := rankNames[c.Rank]; ok {
		return name + string(c.Suit)
	}
	return fmt.Sprintf("%d%c", c.Rank, c.Suit)
}

// MarshalText renders the card as "As", "Td", "7h".
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// newDeck returns the 52 cards in a fixed order.
func newDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// shuffle is a Fisher-Yates pass driven by the room stream.
func shuffle(deck []Card, randIntn func(int) int) {
	for i := len(deck) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

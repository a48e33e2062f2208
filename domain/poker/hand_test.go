package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func cards(t *testing.T, s ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(s))
	for _, c := range s {
		out = append(out, parseCard(t, c))
	}
	return out
}

func parseCard(t *testing.T, s string) Card {
	t.Helper()
	require.Len(t, s, 2)
	var r Rank
	switch s[0] {
	case 'A':
		r = Ace
	case 'K':
		r = King
	case 'Q':
		r = Queen
	case 'J':
		r = Jack
	case 'T':
		r = Ten
	default:
		r = Rank(s[0] - '0')
	}
	return Card{Rank: r, Suit: Suit(s[1])}
}

func TestBestScore_Categories(t *testing.T) {
	tests := []struct {
		name string
		hand []string
		want Category
	}{
		{"straight flush", []string{"9h", "Th", "Jh", "Qh", "Kh", "2c", "3d"}, StraightFlush},
		{"quads", []string{"9h", "9c", "9d", "9s", "Kh", "2c", "3d"}, FourOfAKind},
		{"full house", []string{"9h", "9c", "9d", "Ks", "Kh", "2c", "3d"}, FullHouse},
		{"flush", []string{"2h", "7h", "9h", "Jh", "Kh", "2c", "3d"}, Flush},
		{"wheel", []string{"Ah", "2c", "3d", "4s", "5h", "9c", "Jd"}, Straight},
		{"trips", []string{"9h", "9c", "9d", "4s", "Kh", "2c", "7d"}, ThreeOfAKind},
		{"two pair", []string{"9h", "9c", "4d", "4s", "Kh", "2c", "7d"}, TwoPair},
		{"pair", []string{"9h", "9c", "4d", "5s", "Kh", "2c", "7d"}, OnePair},
		{"high card", []string{"9h", "Tc", "4d", "5s", "Kh", "2c", "7d"}, HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BestScore(cards(t, tt.hand...)).Category())
		})
	}
}

func TestBestScore_Ordering(t *testing.T) {
	req := require.New(t)

	wheel := BestScore(cards(t, "Ah", "2c", "3d", "4s", "5h"))
	sixHigh := BestScore(cards(t, "6h", "2c", "3d", "4s", "5h"))
	req.Less(wheel, sixHigh)

	kingKicker := BestScore(cards(t, "9h", "9c", "Kd", "5s", "2h"))
	queenKicker := BestScore(cards(t, "9s", "9d", "Qd", "5c", "2c"))
	req.Greater(kingKicker, queenKicker)

	// Suits never break ties.
	req.Equal(
		BestScore(cards(t, "Ah", "Kc", "9d", "5s", "2h")),
		BestScore(cards(t, "As", "Kd", "9c", "5h", "2d")),
	)

	req.Equal(Score(0), BestScore(cards(t, "Ah", "Kc")))
}

func TestCard_MarshalText(t *testing.T) {
	req := require.New(t)
	raw, err := Card{Rank: Ten, Suit: Diamonds}.MarshalText()
	req.NoError(err)
	req.Equal("Td", string(raw))
	req.Equal("7h", Card{Rank: 7, Suit: Hearts}.String())
	req.Len(newDeck(), 52)
}

package poker

import "sort"

type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Score orders hands: a higher score wins, equal scores split.
type Score uint32

func (s Score) Category() Category {
	return Category(s >> 20)
}

// BestScore evaluates every five card combination of the given cards.
func BestScore(cards []Card) Score {
	if len(cards) < 5 {
		return 0
	}
	var best Score
	hand := make([]Card, 5)
	var pick func(start, depth int)
	pick = func(start, depth int) {
		if depth == 5 {
			if s := scoreFive(hand); s > best {
				best = s
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			hand[depth] = cards[i]
			pick(i+1, depth+1)
		}
	}
	pick(0, 0)
	return best
}

func scoreFive(hand []Card) Score {
	counts := make(map[Rank]int, 5)
	flush := true
	for i, c := range hand {
		counts[c.Rank]++
		if i > 0 && c.Suit != hand[0].Suit {
			flush = false
		}
	}

	// Ranks ordered by multiplicity then by rank, expanded back to five entries.
	distinct := make([]Rank, 0, len(counts))
	for r := range counts {
		distinct = append(distinct, r)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return distinct[i] > distinct[j]
	})
	ordered := make([]Rank, 0, 5)
	for _, r := range distinct {
		for n := 0; n < counts[r]; n++ {
			ordered = append(ordered, r)
		}
	}

	straight := false
	if len(distinct) == 5 {
		switch {
		case distinct[0]-distinct[4] == 4:
			straight = true
		case distinct[0] == Ace && distinct[1] == 5:
			// The wheel plays the ace low.
			straight = true
			ordered = []Rank{5, 4, 3, 2, 1}
		}
	}

	var category Category
	switch {
	case straight && flush:
		category = StraightFlush
	case counts[distinct[0]] == 4:
		category = FourOfAKind
	case counts[distinct[0]] == 3 && counts[distinct[1]] == 2:
		category = FullHouse
	case flush:
		category = Flush
	case straight:
		category = Straight
	case counts[distinct[0]] == 3:
		category = ThreeOfAKind
	case counts[distinct[0]] == 2 && counts[distinct[1]] == 2:
		category = TwoPair
	case counts[distinct[0]] == 2:
		category = OnePair
	default:
		category = HighCard
	}

	score := Score(category) << 20
	for i, r := range ordered {
		score |= Score(r) << (16 - 4*i)
	}
	return score
}

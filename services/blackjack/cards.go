package blackjack

// Suit of a french-deck card. Stored as the symbol itself so the
// JSON documents in Redis read the same way clients render them.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Clubs    Suit = "♣"
	Diamonds Suit = "♦"
)

// Rank of a card ("A", "2".."10", "J", "Q", "K")
type Rank string

var Suits = []Suit{Spades, Hearts, Clubs, Diamonds}

var Ranks = []Rank{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Card is an immutable value object
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// rankValue returns the blackjack value of a rank before any ace
// reduction: face cards count 10, the ace counts 11
func rankValue(r Rank) int {
	switch r {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	case "7":
		return 7
	case "8":
		return 8
	case "9":
		return 9
	}
	return 0
}

// HandValue computes the blackjack value of a hand. Aces are counted
// as 11 first; while the total exceeds 21 and an ace is still counted
// as 11, one ace is re-counted as 1 (total -= 10).
func HandValue(hand []Card) int {
	value := 0
	aces := 0

	for _, card := range hand {
		if card.Rank == "A" {
			aces++
		}
		value += rankValue(card.Rank)
	}

	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}

	return value
}

// IsBlackjack reports whether the hand is a natural: exactly two cards
// totalling 21
func IsBlackjack(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

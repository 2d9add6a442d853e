package blackjack

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted is returned when a card is drawn from an empty deck.
// With 4 seats plus the dealer a 52 card deck cannot realistically run
// out mid-round, but the failure has to be explicit instead of
// fabricating a card.
var ErrDeckExhausted = errors.New("deck exhausted")

// DeckSize is the number of cards in a fresh deck
const DeckSize = 52

// NewShuffledDeck returns the 52 unique cards in a uniformly random
// order (Fisher-Yates via rand.Shuffle). A comparator-based sort
// shuffle would be statistically biased.
func NewShuffledDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}

	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return deck
}

// DealOne removes and returns the card at the top of the deck
// (the last element).
func DealOne(deck []Card) (Card, []Card, error) {
	if len(deck) == 0 {
		return Card{}, deck, ErrDeckExhausted
	}
	card := deck[len(deck)-1]
	return card, deck[:len(deck)-1], nil
}

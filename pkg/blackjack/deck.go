package blackjack

import (
	"encoding/json"
	"math/rand"
)

// reshuffleThreshold is the minimum deck size for starting a round. Below
// it the deck is replaced before the initial deal; three hands can draw a
// lot of cards and the margin keeps the deck from running dry mid-round.
const reshuffleThreshold = 15

// Deck represents an ordered deck of playing cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a shuffled 52-card deck using the given random number
// generator
func NewDeck(rng *rand.Rand) *Deck {
	deck := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}

	suits := []Suit{Hearts, Diamonds, Clubs, Spades}
	ranks := []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

	for _, suit := range suits {
		for _, rank := range ranks {
			deck.cards = append(deck.cards, Card{suit: suit, rank: rank})
		}
	}

	deck.Shuffle()

	return deck
}

// NewDeckFromCards creates a deck holding the given cards in order (for
// restoration)
func NewDeckFromCards(cards []Card, rng *rand.Rand) *Deck {
	deck := &Deck{
		cards: make([]Card, len(cards)),
		rng:   rng,
	}
	copy(deck.cards, cards)
	return deck
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the last card in the deck. Dealing from an
// empty deck returns ErrDeckExhausted.
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// NeedsReshuffle reports whether the deck is too low to start a round
func (d *Deck) NeedsReshuffle() bool {
	return len(d.cards) < reshuffleThreshold
}

// Cards returns a copy of the remaining cards in deck order
func (d *Deck) Cards() []Card {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return cards
}

// deckJSON is the serialized deck layout
type deckJSON struct {
	Cards []Card `json:"cards"`
}

// MarshalJSON implements json.Marshaler. The whole remaining deck is
// serialized in order so a restored session deals identically.
func (d *Deck) MarshalJSON() ([]byte, error) {
	return json.Marshal(deckJSON{Cards: d.cards})
}

// UnmarshalJSON implements json.Unmarshaler. The rng is not part of the
// serialized form; the owning session reattaches one after decoding.
func (d *Deck) UnmarshalJSON(data []byte) error {
	var dj deckJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	d.cards = dj.Cards
	return nil
}

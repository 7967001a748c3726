package blackjack

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
)

// Rank represents a card rank
type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "Jack"
	Queen Rank = "Queen"
	King  Rank = "King"
	Ace   Rank = "Ace"
)

// Card represents a playing card. Immutable once created.
type Card struct {
	suit Suit
	rank Rank
}

// NewCard creates a new Card with the given suit and rank
func NewCard(suit Suit, rank Rank) Card {
	return Card{suit: suit, rank: rank}
}

// Suit returns the card's suit
func (c Card) Suit() Suit {
	return c.suit
}

// Rank returns the card's rank
func (c Card) Rank() Rank {
	return c.rank
}

// Value returns the card's blackjack value. An Ace counts 11 here; scoring
// reduces it to 1 when the hand would bust.
func (c Card) Value() int {
	switch c.rank {
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	case Ten, Jack, Queen, King:
		return 10
	case Ace:
		return 11
	}
	return 0
}

// String returns a string representation of the card
func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.rank, c.suit)
}

// CardJSON represents a card for JSON serialization. The value is derived
// from the rank and never stored.
type CardJSON struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(CardJSON{
		Suit: string(c.suit),
		Rank: string(c.rank),
	})
}

// UnmarshalJSON implements json.Unmarshaler interface for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var cardJSON CardJSON
	if err := json.Unmarshal(data, &cardJSON); err != nil {
		return err
	}

	// Validate and convert suit
	switch cardJSON.Suit {
	case "Hearts", "hearts", "h", "H", "♥":
		c.suit = Hearts
	case "Diamonds", "diamonds", "d", "D", "♦":
		c.suit = Diamonds
	case "Clubs", "clubs", "c", "C", "♣":
		c.suit = Clubs
	case "Spades", "spades", "s", "S", "♠":
		c.suit = Spades
	default:
		return fmt.Errorf("invalid suit: %s", cardJSON.Suit)
	}

	// Validate and convert rank
	switch cardJSON.Rank {
	case "Ace", "ace", "A", "a":
		c.rank = Ace
	case "King", "king", "K", "k":
		c.rank = King
	case "Queen", "queen", "Q", "q":
		c.rank = Queen
	case "Jack", "jack", "J", "j":
		c.rank = Jack
	case "10", "T", "t", "ten", "Ten":
		c.rank = Ten
	case "9", "nine", "Nine":
		c.rank = Nine
	case "8", "eight", "Eight":
		c.rank = Eight
	case "7", "seven", "Seven":
		c.rank = Seven
	case "6", "six", "Six":
		c.rank = Six
	case "5", "five", "Five":
		c.rank = Five
	case "4", "four", "Four":
		c.rank = Four
	case "3", "three", "Three":
		c.rank = Three
	case "2", "two", "Two":
		c.rank = Two
	default:
		return fmt.Errorf("invalid rank: %s", cardJSON.Rank)
	}

	return nil
}

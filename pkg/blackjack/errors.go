package blackjack

import (
	"errors"
	"fmt"
)

// ErrDeckExhausted is returned when a card is requested from an empty deck.
var ErrDeckExhausted = errors.New("deck exhausted")

// ErrGameOver is returned when a round cannot start because the player has
// no funds left.
var ErrGameOver = errors.New("game over: player has no money")

// ErrRoundReset is returned when the deck ran out during the initial deal.
// The deck has been rebuilt and the bet refunded; the round must be
// restarted.
var ErrRoundReset = errors.New("deck error: round reset")

// PhaseError reports an operation attempted in a phase where it is not
// legal. The session is left untouched.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s in phase %s", e.Op, e.Phase)
}

// BetError reports a bet that is not positive or exceeds the player's
// balance.
type BetError struct {
	Amount  int64
	Balance int64
}

func (e *BetError) Error() string {
	return fmt.Sprintf("invalid bet amount %d or insufficient funds (balance %d)", e.Amount, e.Balance)
}

package server

import (
	"strings"

	"blackjackd/pkg/blackjack"
)

// CardView is the client-facing card shape. The value rides along so
// clients don't need their own rank table.
type CardView struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
}

// hiddenCard stands in for the dealer's face-down card.
var hiddenCard = CardView{Suit: "Hidden", Rank: "Hidden", Value: 0}

// SeatView is the client-facing state of one seat at the table.
type SeatView struct {
	Name        string     `json:"name"`
	Hand        []CardView `json:"hand"`
	Score       int        `json:"score"`
	IsBust      bool       `json:"is_bust"`
	IsBlackjack bool       `json:"is_blackjack"`
}

// PlayerView extends SeatView with the human player's money.
type PlayerView struct {
	SeatView
	Balance    int64 `json:"balance"`
	CurrentBet int64 `json:"current_bet"`
}

// DeckView exposes only the remaining card count, never the card order.
type DeckView struct {
	Remaining int `json:"remaining"`
}

// GameStateUpdate is a complete immutable snapshot of the session as the
// client is allowed to see it.
type GameStateUpdate struct {
	SessionID       string     `json:"session_id"`
	Player          PlayerView `json:"player"`
	AIPlayer        SeatView   `json:"ai_player"`
	Dealer          SeatView   `json:"dealer"`
	Deck            DeckView   `json:"deck"`
	Phase           string     `json:"phase"`
	Difficulty      string     `json:"difficulty"`
	LastRoundWinner string     `json:"last_round_winner"`
	CanBet          bool       `json:"can_bet"`
	CanHitStand     bool       `json:"can_hit_stand"`
	IsGameOver      bool       `json:"is_game_over"`
}

// collectSeat builds the visible state of a seat. With hideFirst set the
// first card is replaced by a placeholder and the score shows only what the
// table can see: the up-card's value, or 0 before the up-card is dealt.
func collectSeat(p *blackjack.Player, hideFirst bool) SeatView {
	hand := make([]CardView, 0, len(p.Hand))
	if hideFirst && len(p.Hand) > 0 {
		hand = append(hand, hiddenCard)
		for _, c := range p.Hand[1:] {
			hand = append(hand, CardView{Suit: string(c.Suit()), Rank: string(c.Rank()), Value: c.Value()})
		}
	} else {
		for _, c := range p.Hand {
			hand = append(hand, CardView{Suit: string(c.Suit()), Rank: string(c.Rank()), Value: c.Value()})
		}
	}

	score := p.Score()
	if hideFirst {
		if up, ok := p.UpCard(); ok {
			score = up.Value()
		} else {
			score = 0
		}
	}

	return SeatView{
		Name:        p.Name,
		Hand:        hand,
		Score:       score,
		IsBust:      p.IsBust(),
		IsBlackjack: p.IsBlackjack(),
	}
}

// collectGameState collects a complete immutable snapshot of session state
// for the client, hiding the dealer's hole card until the round is over.
func collectGameState(sess *blackjack.Session) *GameStateUpdate {
	hideDealer := sess.HideDealerHole()

	return &GameStateUpdate{
		SessionID: sess.ID,
		Player: PlayerView{
			SeatView:   collectSeat(&sess.Player.Player, false),
			Balance:    sess.Player.Balance,
			CurrentBet: sess.Player.CurrentBet,
		},
		AIPlayer:        collectSeat(&sess.AI.Player, false),
		Dealer:          collectSeat(sess.Dealer, hideDealer),
		Deck:            DeckView{Remaining: sess.Deck.Remaining()},
		Phase:           strings.ToLower(sess.Phase.String()),
		Difficulty:      sess.Difficulty.String(),
		LastRoundWinner: sess.LastRoundWinner,
		CanBet:          sess.CanBet(),
		CanHitStand:     sess.CanHitStand(),
		IsGameOver:      sess.IsGameOver(),
	}
}

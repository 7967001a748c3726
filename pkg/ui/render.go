package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"blackjackd/pkg/blackjack"
	"blackjackd/pkg/server"
	"blackjackd/pkg/utils"
)

// Renderer handles all rendering of UI screens and game elements
type Renderer struct {
	ui *Model
}

// RenderBetForm draws the stake and difficulty form shown between rounds.
func (r *Renderer) RenderBetForm() string {
	var s string

	s += TitleStyle.Render("♠ Blackjack ♠") + "\n\n"

	if g := r.ui.game; g != nil {
		s += fmt.Sprintf("💰 Balance: %d\n\n", g.Player.Balance)
	}

	fields := []struct {
		label string
		value string
	}{
		{"Bet Amount", r.ui.betAmount},
		{"Difficulty", "< " + difficulties[r.ui.difficulty] + " >"},
	}

	for i, field := range fields {
		style := BlurredStyle
		marker := " "
		if i == r.ui.selectedField {
			style = FocusedStyle
			marker = ">"
		}
		s += style.Render(fmt.Sprintf("%s %s: %s", marker, field.label, field.value)) + "\n"
	}

	s += "\n" + HelpStyle.Render("Type to edit the bet, left/right to change difficulty, Enter to deal, 'q' to quit")
	return s
}

// RenderTable draws the full table while a round is in progress.
func (r *Renderer) RenderTable() string {
	g := r.ui.game
	if g == nil {
		return TitleStyle.Render("Waiting for the table...")
	}

	var s string
	s += TitleStyle.Render("♠ Blackjack ♠") + "\n\n"

	s += r.renderSeat("🃏 DEALER", DealerHeaderStyle, g.Dealer) + "\n\n"
	s += r.renderSeat("🤖 "+g.AIPlayer.Name, SeatHeaderStyle, g.AIPlayer) + "\n\n"
	s += r.renderSeat("🂠 YOUR HAND", SeatHeaderStyle, g.Player.SeatView) + "\n"
	s += r.renderTableInfo() + "\n\n"
	s += r.renderStatusSection()
	return s
}

// RenderGameOver draws the busted-bankroll screen.
func (r *Renderer) RenderGameOver() string {
	var s string

	s += LoseBannerStyle.Render("💸 GAME OVER") + "\n"
	if g := r.ui.game; g != nil {
		s += fmt.Sprintf("Final balance: %d\n", g.Player.Balance)
	}
	s += HelpStyle.Render("'r' to start over with a fresh bankroll, 'q' to quit")
	return s
}

// renderSeat draws one seat: header, cards, and score line.
func (r *Renderer) renderSeat(header string, headerStyle lipgloss.Style, seat server.SeatView) string {
	var s string
	s += headerStyle.Render(header) + "\n"
	s += r.renderHand(seat.Hand) + "\n"
	s += r.renderScore(seat)
	return s
}

// renderHand draws a row of cards. A rank of "Hidden" marks the dealer's
// face-down hole card.
func (r *Renderer) renderHand(hand []server.CardView) string {
	if len(hand) == 0 {
		return HiddenCardStyle.Render("🂠")
	}

	var cards []string
	for _, c := range hand {
		display := utils.FormatCard(c.Rank, c.Suit)
		switch {
		case c.Rank == "Hidden":
			cards = append(cards, HiddenCardStyle.Render(display))
		case isRedSuit(c.Suit):
			cards = append(cards, RedCardStyle.Render(display))
		default:
			cards = append(cards, CardStyle.Render(display))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderScore draws the score line for a seat. While the dealer's hole card
// is hidden only the visible up-card value is shown.
func (r *Renderer) renderScore(seat server.SeatView) string {
	if holeHidden(seat) {
		return BlurredStyle.Render(fmt.Sprintf("Showing: %d", seat.Score))
	}

	score := fmt.Sprintf("Score: %d", seat.Score)
	switch {
	case seat.IsBust:
		return BustStyle.Render(score + "  BUST!")
	case seat.IsBlackjack:
		return BlackjackStyle.Render(score + "  BLACKJACK!")
	default:
		return score
	}
}

// renderTableInfo draws the balance, stake, and deck line.
func (r *Renderer) renderTableInfo() string {
	g := r.ui.game
	return InfoStyle.Render(fmt.Sprintf("💰 Balance: %d | Bet: %d | Deck: %d cards | Difficulty: %s",
		g.Player.Balance, g.Player.CurrentBet, g.Deck.Remaining, g.Difficulty))
}

// renderStatusSection draws the action row or the table status below it.
func (r *Renderer) renderStatusSection() string {
	g := r.ui.game

	switch {
	case g.CanHitStand:
		return r.renderActionButtons()
	case g.Phase == phaseRoundEnd:
		return r.renderRoundResult()
	case g.Phase == phaseAITurn:
		return HelpStyle.Render("🤖 AI player is thinking...")
	case g.Phase == phaseDealerTurn:
		return HelpStyle.Render("🃏 Dealer is playing...")
	case g.Phase == phaseDealing:
		return HelpStyle.Render("Dealing...")
	default:
		return HelpStyle.Render("Waiting for the table...")
	}
}

// renderActionButtons draws the hit/stand row for the player's turn.
func (r *Renderer) renderActionButtons() string {
	actions := []string{"Hit", "Stand"}
	var buttons []string
	for i, action := range actions {
		if i == r.ui.selectedAction {
			buttons = append(buttons, SelectedActionStyle.Render(action))
		} else {
			buttons = append(buttons, ActionButtonStyle.Render(action))
		}
	}

	s := TitleStyle.Render("🎯 YOUR TURN") + "\n"
	s += lipgloss.JoinHorizontal(lipgloss.Top, buttons...) + "\n"
	s += HelpStyle.Render("'h' to hit, 's' to stand, arrows and Enter to choose")
	return s
}

// renderRoundResult draws the settled-round banner.
func (r *Renderer) renderRoundResult() string {
	g := r.ui.game

	var banner string
	switch g.LastRoundWinner {
	case blackjack.PlayerName:
		banner = WinBannerStyle.Render("🎉 You win this round!")
	case blackjack.DealerName:
		banner = LoseBannerStyle.Render("🃏 Dealer wins this round.")
	case blackjack.PushWinner:
		banner = PushBannerStyle.Render("🤝 Push. Your bet is returned.")
	default:
		banner = InfoStyle.Render("Round over.")
	}

	s := banner + "\n"
	s += HelpStyle.Render("Enter to deal again, 'b' to change your bet, 'q' to quit")
	return s
}

// holeHidden reports whether the seat's first card is the face-down
// placeholder.
func holeHidden(seat server.SeatView) bool {
	return len(seat.Hand) > 0 && seat.Hand[0].Rank == "Hidden"
}

func isRedSuit(suit string) bool {
	return suit == "Hearts" || suit == "Diamonds"
}

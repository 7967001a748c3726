package blackjack

// Player holds the state shared by every seat at the table: the human, the
// AI opponent and the dealer.
type Player struct {
	Name     string `json:"name"`
	Hand     []Card `json:"hand"`
	IsDealer bool   `json:"is_dealer"`
}

// NewDealer creates the dealer seat
func NewDealer(name string) *Player {
	return &Player{
		Name:     name,
		Hand:     make([]Card, 0, 8),
		IsDealer: true,
	}
}

// AddCard appends a card to the player's hand
func (p *Player) AddCard(card Card) {
	p.Hand = append(p.Hand, card)
}

// ClearHand removes all cards from the player's hand
func (p *Player) ClearHand() {
	p.Hand = make([]Card, 0, 8)
}

// Score returns the blackjack score of the hand. Aces count 11 until the
// total busts, then are recounted as 1 one at a time. Recomputed from the
// full hand on every call.
func (p *Player) Score() int {
	score := 0
	aces := 0
	for _, card := range p.Hand {
		score += card.Value()
		if card.Rank() == Ace {
			aces++
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsBust reports whether the hand scores over 21
func (p *Player) IsBust() bool {
	return p.Score() > 21
}

// IsBlackjack reports whether the hand is exactly two cards scoring 21
func (p *Player) IsBlackjack() bool {
	return len(p.Hand) == 2 && p.Score() == 21
}

// UpCard returns the dealer's visible card. The first card stays face down
// until the dealer's turn; only the second is public.
func (p *Player) UpCard() (Card, bool) {
	if len(p.Hand) < 2 {
		return Card{}, false
	}
	return p.Hand[1], true
}

// HandString returns a string representation of the player's hand
func (p *Player) HandString() string {
	if len(p.Hand) == 0 {
		return "no cards"
	}
	str := ""
	for i, card := range p.Hand {
		if i > 0 {
			str += ", "
		}
		str += card.String()
	}
	return str
}

// HumanPlayer is the betting seat. The balance never goes negative;
// placing a bet moves funds from the balance into the current bet.
type HumanPlayer struct {
	Player
	Balance    int64 `json:"balance"`
	CurrentBet int64 `json:"current_bet"`
}

// NewHumanPlayer creates the human seat with the given starting balance
func NewHumanPlayer(name string, balance int64) *HumanPlayer {
	return &HumanPlayer{
		Player: Player{
			Name: name,
			Hand: make([]Card, 0, 8),
		},
		Balance: balance,
	}
}

// PlaceBet moves amount from the balance into the current bet. The bet
// must be positive and no larger than the balance.
func (p *HumanPlayer) PlaceBet(amount int64) error {
	if amount <= 0 || amount > p.Balance {
		return &BetError{Amount: amount, Balance: p.Balance}
	}
	p.CurrentBet = amount
	p.Balance -= amount
	return nil
}

// RefundBet returns the current bet to the balance without settling it
func (p *HumanPlayer) RefundBet() {
	p.Balance += p.CurrentBet
	p.CurrentBet = 0
}

// WinRound credits a 2x payout, stake included, and clears the bet. It
// returns the amount credited.
func (p *HumanPlayer) WinRound() int64 {
	winnings := p.CurrentBet * 2
	p.Balance += winnings
	p.CurrentBet = 0
	return winnings
}

// WinBlackjack credits the 5:2 blackjack payout, stake included, and
// clears the bet. Odd bets floor. It returns the amount credited.
func (p *HumanPlayer) WinBlackjack() int64 {
	winnings := p.CurrentBet * 5 / 2
	p.Balance += winnings
	p.CurrentBet = 0
	return winnings
}

// PushRound returns the stake unchanged and clears the bet
func (p *HumanPlayer) PushRound() {
	p.Balance += p.CurrentBet
	p.CurrentBet = 0
}

// LoseRound forfeits the current bet
func (p *HumanPlayer) LoseRound() {
	p.CurrentBet = 0
}

// AIPlayer is the scripted opponent seat. Its hand never settles against
// the human's balance; it exists to occupy a turn slot.
type AIPlayer struct {
	Player
	Difficulty Difficulty `json:"difficulty"`
}

// NewAIPlayer creates the AI seat playing at the given difficulty
func NewAIPlayer(name string, difficulty Difficulty) *AIPlayer {
	return &AIPlayer{
		Player: Player{
			Name: name,
			Hand: make([]Card, 0, 8),
		},
		Difficulty: difficulty,
	}
}

// Decide picks the AI's next action given the dealer's up-card
func (p *AIPlayer) Decide(upCard Card) Action {
	return p.Difficulty.Decide(p.Score(), upCard.Value())
}

package blackjack

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/decred/slog"
)

// Seat names and winner markers. The winner field holds the player's name
// on a win, the dealer's name on a loss, PushWinner on a tie and NoWinner
// before any round has finished.
const (
	PlayerName = "Player"
	AIName     = "AI Player"
	DealerName = "Dealer"

	NoWinner   = "None"
	PushWinner = "Push"
)

// Config holds configuration for a new game session
type Config struct {
	ID         string
	Difficulty Difficulty
	Balance    int64
	Seed       int64 // optional, for deterministic decks
	Log        slog.Logger
}

// Session is the aggregate root for one human-vs-AI blackjack game: the
// three seats, the deck, the current phase and the last round's result. A
// Session owns all of its parts exclusively and is not safe for concurrent
// use; callers serialize mutations through the store's versioned writes.
type Session struct {
	ID              string
	Player          *HumanPlayer
	AI              *AIPlayer
	Dealer          *Player
	Deck            *Deck
	Phase           Phase
	Difficulty      Difficulty
	LastRoundWinner string

	rng *rand.Rand
	log slog.Logger
}

// NewSession creates a session in WAITING_FOR_BET with fresh seats and a
// shuffled deck
func NewSession(cfg Config) *Session {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}

	s := &Session{
		ID:              cfg.ID,
		Player:          NewHumanPlayer(PlayerName, cfg.Balance),
		AI:              NewAIPlayer(AIName, cfg.Difficulty),
		Dealer:          NewDealer(DealerName),
		Deck:            NewDeck(rng),
		Phase:           WaitingForBet,
		Difficulty:      cfg.Difficulty,
		LastRoundWinner: NoWinner,
		rng:             rng,
		log:             log,
	}
	s.log.Debugf("Session %s initialized at difficulty %s", s.ID, s.Difficulty)
	return s
}

// SetLogger attaches a logger. Restored sessions start with logging
// disabled.
func (s *Session) SetLogger(log slog.Logger) {
	if log == nil {
		log = slog.Disabled
	}
	s.log = log
}

// SetDifficulty changes the AI strategy for subsequent rounds
func (s *Session) SetDifficulty(d Difficulty) {
	s.Difficulty = d
	s.AI.Difficulty = d
}

// StartRound takes the player's bet and deals the opening hands. Legal
// from WAITING_FOR_BET and ROUND_END; a carried-over deck below the
// reshuffle margin is replaced first. The phase after the deal depends on
// blackjacks: the player's sends the turn to the AI, anyone else's
// straight to the dealer, otherwise the player acts.
func (s *Session) StartRound(bet int64) error {
	if err := checkPhase(opStartRound, s.Phase); err != nil {
		return err
	}
	if s.Player.Balance <= 0 {
		s.Phase = GameOver
		return ErrGameOver
	}
	if err := s.Player.PlaceBet(bet); err != nil {
		return err
	}

	s.Player.ClearHand()
	s.AI.ClearHand()
	s.Dealer.ClearHand()
	s.LastRoundWinner = NoWinner

	if s.Deck.NeedsReshuffle() {
		s.Deck = NewDeck(s.rng)
		s.log.Infof("Session %s: deck was low, new deck shuffled", s.ID)
	}

	s.Phase = Dealing
	if err := s.dealInitial(); err != nil {
		// Failsafe: rebuild the deck, hand the bet back and let the
		// caller retry the round.
		s.Deck = NewDeck(s.rng)
		s.Player.RefundBet()
		s.Phase = WaitingForBet
		s.log.Errorf("Session %s: deck ran out during initial deal", s.ID)
		return ErrRoundReset
	}

	switch {
	case s.Player.IsBlackjack():
		s.Phase = AITurn
	case s.AI.IsBlackjack():
		s.Phase = DealerTurn
	case s.Dealer.IsBlackjack():
		s.Phase = DealerTurn
	default:
		s.Phase = PlayerTurn
	}

	s.log.Infof("Session %s: round started with bet %d, phase %s", s.ID, bet, s.Phase)
	return nil
}

// dealInitial deals two cards to each seat, round-robin: player, AI,
// dealer, player, AI, dealer.
func (s *Session) dealInitial() error {
	seats := []*Player{&s.Player.Player, &s.AI.Player, s.Dealer}
	for i := 0; i < 2; i++ {
		for _, seat := range seats {
			card, err := s.Deck.Deal()
			if err != nil {
				return err
			}
			seat.AddCard(card)
		}
	}
	return nil
}

// PlayerHit deals the player one card. Busting or reaching exactly 21
// ends the player's turn.
func (s *Session) PlayerHit() error {
	if err := checkPhase(opPlayerHit, s.Phase); err != nil {
		return err
	}

	card, err := s.Deck.Deal()
	if err != nil {
		return fmt.Errorf("player hit: %w", err)
	}
	s.Player.AddCard(card)
	s.log.Debugf("Session %s: %s hit, score %d", s.ID, s.Player.Name, s.Player.Score())

	if s.Player.IsBust() || s.Player.Score() == 21 {
		s.Phase = AITurn
	}
	return nil
}

// PlayerStand ends the player's turn unconditionally
func (s *Session) PlayerStand() error {
	if err := checkPhase(opPlayerStand, s.Phase); err != nil {
		return err
	}
	s.log.Debugf("Session %s: %s stood at %d", s.ID, s.Player.Name, s.Player.Score())
	s.Phase = AITurn
	return nil
}

// PlayAITurn runs the AI decision loop to completion and passes the turn
// to the dealer. A busted human skips the AI turn entirely: the AI's hand
// never settles against the player, so its play is irrelevant once the
// human has lost.
func (s *Session) PlayAITurn() error {
	if err := checkPhase(opPlayAITurn, s.Phase); err != nil {
		return err
	}

	if s.Player.IsBust() {
		s.Phase = DealerTurn
		s.log.Debugf("Session %s: player busted, skipping AI turn", s.ID)
		return nil
	}

	for !s.AI.IsBust() && s.AI.Score() < 21 {
		upCard, ok := s.Dealer.UpCard()
		if !ok {
			return fmt.Errorf("ai turn: dealer up-card missing")
		}
		if s.AI.Decide(upCard) != ActionHit {
			s.log.Debugf("Session %s: %s stood at %d", s.ID, s.AI.Name, s.AI.Score())
			break
		}
		card, err := s.Deck.Deal()
		if err != nil {
			return fmt.Errorf("ai turn: %w", err)
		}
		s.AI.AddCard(card)
		s.log.Debugf("Session %s: %s hit, score %d", s.ID, s.AI.Name, s.AI.Score())
	}

	s.Phase = DealerTurn
	return nil
}

// PlayDealerTurn reveals the hole card, draws the dealer to 17 or better
// and settles the round, ending in ROUND_END, or GAME_OVER when the
// player is out of funds.
func (s *Session) PlayDealerTurn() error {
	if err := checkPhase(opPlayDealerTurn, s.Phase); err != nil {
		return err
	}

	for s.Dealer.Score() < 17 {
		card, err := s.Deck.Deal()
		if err != nil {
			return fmt.Errorf("dealer turn: %w", err)
		}
		s.Dealer.AddCard(card)
		s.log.Debugf("Session %s: dealer hit, score %d", s.ID, s.Dealer.Score())
	}

	s.Phase = RoundEnd
	s.resolveRound()
	return nil
}

// resolveRound settles the player's bet against the dealer per the fixed
// priority table: player bust loses; a dealer bust pays 2.5x with a
// player blackjack, 2x without; blackjack beats a plain 21; otherwise
// higher score wins 2x and a tie pushes. The AI seat never settles.
func (s *Session) resolveRound() {
	playerScore := s.Player.Score()
	dealerScore := s.Dealer.Score()

	var winnings int64
	switch {
	case s.Player.IsBust():
		s.Player.LoseRound()
		s.LastRoundWinner = s.Dealer.Name
	case s.Dealer.IsBust() && s.Player.IsBlackjack():
		winnings = s.Player.WinBlackjack()
		s.LastRoundWinner = s.Player.Name
	case s.Dealer.IsBust():
		winnings = s.Player.WinRound()
		s.LastRoundWinner = s.Player.Name
	case s.Player.IsBlackjack() && !s.Dealer.IsBlackjack():
		winnings = s.Player.WinBlackjack()
		s.LastRoundWinner = s.Player.Name
	case s.Dealer.IsBlackjack() && !s.Player.IsBlackjack():
		s.Player.LoseRound()
		s.LastRoundWinner = s.Dealer.Name
	case playerScore > dealerScore:
		winnings = s.Player.WinRound()
		s.LastRoundWinner = s.Player.Name
	case playerScore < dealerScore:
		s.Player.LoseRound()
		s.LastRoundWinner = s.Dealer.Name
	default:
		s.Player.PushRound()
		s.LastRoundWinner = PushWinner
	}

	s.log.Infof("Session %s: round over, winner %s, winnings %d, balance %d",
		s.ID, s.LastRoundWinner, winnings, s.Player.Balance)

	if s.Player.Balance <= 0 {
		s.Phase = GameOver
		s.log.Infof("Session %s: player out of money, game over", s.ID)
	}
}

// Reset replaces every seat and the deck wholesale and returns to
// WAITING_FOR_BET with the given balance. Always legal, including from
// GAME_OVER.
func (s *Session) Reset(balance int64) {
	s.Player = NewHumanPlayer(PlayerName, balance)
	s.AI = NewAIPlayer(AIName, s.Difficulty)
	s.Dealer = NewDealer(DealerName)
	s.Deck = NewDeck(s.rng)
	s.Phase = WaitingForBet
	s.LastRoundWinner = NoWinner
	s.log.Infof("Session %s reset with balance %d", s.ID, balance)
}

// CanBet reports whether a new round may be started
func (s *Session) CanBet() bool {
	return s.Phase == WaitingForBet || s.Phase == RoundEnd
}

// CanHitStand reports whether the player may act on their hand
func (s *Session) CanHitStand() bool {
	return s.Phase == PlayerTurn
}

// IsGameOver reports whether the game has ended with the player broke
func (s *Session) IsGameOver() bool {
	return s.Player.Balance <= 0 && s.Phase == GameOver
}

// HideDealerHole reports whether the dealer's first card is still face
// down
func (s *Session) HideDealerHole() bool {
	return s.Phase != RoundEnd && s.Phase != GameOver
}

// sessionJSON is the persisted session layout
type sessionJSON struct {
	SessionID       string       `json:"session_id"`
	Player          *HumanPlayer `json:"player"`
	AI              *AIPlayer    `json:"ai_player"`
	Dealer          *Player      `json:"dealer"`
	Deck            *Deck        `json:"deck"`
	Phase           Phase        `json:"phase"`
	Difficulty      Difficulty   `json:"difficulty"`
	LastRoundWinner string       `json:"last_round_winner"`
}

// MarshalJSON implements json.Marshaler. Every field round-trips exactly,
// deck order included.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		SessionID:       s.ID,
		Player:          s.Player,
		AI:              s.AI,
		Dealer:          s.Dealer,
		Deck:            s.Deck,
		Phase:           s.Phase,
		Difficulty:      s.Difficulty,
		LastRoundWinner: s.LastRoundWinner,
	})
}

// UnmarshalSession reconstructs a session from its serialized form. The
// restored session gets a fresh rng and a disabled logger; callers attach
// a real one with SetLogger.
func UnmarshalSession(data []byte) (*Session, error) {
	var sj sessionJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sj.Player == nil || sj.AI == nil || sj.Dealer == nil || sj.Deck == nil {
		return nil, fmt.Errorf("unmarshal session %q: incomplete state", sj.SessionID)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Session{
		ID:              sj.SessionID,
		Player:          sj.Player,
		AI:              sj.AI,
		Dealer:          sj.Dealer,
		Deck:            sj.Deck,
		Phase:           sj.Phase,
		Difficulty:      sj.Difficulty,
		LastRoundWinner: sj.LastRoundWinner,
		rng:             rng,
		log:             slog.Disabled,
	}
	s.Deck.rng = rng
	return s, nil
}

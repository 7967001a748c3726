package blackjack

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(Config{
		ID:         "test-session",
		Difficulty: Medium,
		Balance:    1000,
		Seed:       42,
	})
}

// stackDeck replaces the session deck so the next deals come off the end
// of cards in reverse order.
func stackDeck(s *Session, cards ...Card) {
	s.Deck = NewDeckFromCards(cards, rand.New(rand.NewSource(1)))
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)

	if s.Phase != WaitingForBet {
		t.Errorf("Expected phase WAITING_FOR_BET, got %s", s.Phase)
	}
	if s.Player.Name != PlayerName || s.AI.Name != AIName || s.Dealer.Name != DealerName {
		t.Errorf("Unexpected seat names: %s, %s, %s", s.Player.Name, s.AI.Name, s.Dealer.Name)
	}
	if !s.Dealer.IsDealer {
		t.Error("Dealer seat must have IsDealer set")
	}
	if s.Player.Balance != 1000 {
		t.Errorf("Expected balance 1000, got %d", s.Player.Balance)
	}
	if s.Deck.Remaining() != 52 {
		t.Errorf("Expected 52 cards, got %d", s.Deck.Remaining())
	}
	if s.LastRoundWinner != NoWinner {
		t.Errorf("Expected winner %q, got %q", NoWinner, s.LastRoundWinner)
	}
	if s.AI.Difficulty != Medium || s.Difficulty != Medium {
		t.Error("Difficulty not propagated to the AI seat")
	}
}

func TestStartRoundDealsHands(t *testing.T) {
	s := newTestSession(t)

	if err := s.StartRound(100); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	if len(s.Player.Hand) != 2 || len(s.AI.Hand) != 2 || len(s.Dealer.Hand) != 2 {
		t.Errorf("Expected 2 cards per seat, got %d/%d/%d",
			len(s.Player.Hand), len(s.AI.Hand), len(s.Dealer.Hand))
	}
	if s.Deck.Remaining() != 46 {
		t.Errorf("Expected 46 cards remaining, got %d", s.Deck.Remaining())
	}
	if s.Player.Balance != 900 || s.Player.CurrentBet != 100 {
		t.Errorf("Expected balance 900 and bet 100, got %d and %d",
			s.Player.Balance, s.Player.CurrentBet)
	}

	switch s.Phase {
	case PlayerTurn, AITurn, DealerTurn:
	default:
		t.Errorf("Unexpected phase after deal: %s", s.Phase)
	}
}

func TestStartRoundPhasePriority(t *testing.T) {
	// Deals come off the end: player, AI, dealer, player, AI, dealer. The
	// padding keeps the stacked deck above the reshuffle margin.
	deal := func(p1, a1, d1, p2, a2, d2 Card) []Card {
		cards := make([]Card, 0, reshuffleThreshold+6)
		for i := 0; i < reshuffleThreshold; i++ {
			cards = append(cards, NewCard(Hearts, Two))
		}
		return append(cards, d2, a2, p2, d1, a1, p1)
	}

	tests := []struct {
		name  string
		cards []Card
		want  Phase
	}{
		{
			"player blackjack goes to the AI turn",
			deal(NewCard(Hearts, Ace), NewCard(Clubs, Five), NewCard(Diamonds, Seven),
				NewCard(Hearts, King), NewCard(Clubs, Six), NewCard(Diamonds, Eight)),
			AITurn,
		},
		{
			"ai blackjack skips to the dealer turn",
			deal(NewCard(Hearts, Five), NewCard(Clubs, Ace), NewCard(Diamonds, Seven),
				NewCard(Hearts, Six), NewCard(Clubs, King), NewCard(Diamonds, Eight)),
			DealerTurn,
		},
		{
			"dealer blackjack skips to the dealer turn",
			deal(NewCard(Hearts, Five), NewCard(Clubs, Four), NewCard(Diamonds, Ace),
				NewCard(Hearts, Six), NewCard(Clubs, Seven), NewCard(Diamonds, Queen)),
			DealerTurn,
		},
		{
			"no blackjack is the player's turn",
			deal(NewCard(Hearts, Five), NewCard(Clubs, Four), NewCard(Diamonds, Nine),
				NewCard(Hearts, Six), NewCard(Clubs, Seven), NewCard(Diamonds, Queen)),
			PlayerTurn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			stackDeck(s, tt.cards...)

			if err := s.StartRound(100); err != nil {
				t.Fatalf("StartRound failed: %v", err)
			}
			if s.Phase != tt.want {
				t.Errorf("Expected phase %s, got %s", tt.want, s.Phase)
			}
		})
	}
}

func TestStartRoundRejectsInvalidBets(t *testing.T) {
	for _, bet := range []int64{0, -10, 1001} {
		s := newTestSession(t)
		err := s.StartRound(bet)
		if err == nil {
			t.Fatalf("Expected error for bet %d", bet)
		}

		var betErr *BetError
		if !errors.As(err, &betErr) {
			t.Fatalf("Expected *BetError for bet %d, got %v", bet, err)
		}
		if s.Player.Balance != 1000 || s.Player.CurrentBet != 0 {
			t.Errorf("Rejected bet mutated the player: balance %d, bet %d",
				s.Player.Balance, s.Player.CurrentBet)
		}
		if s.Phase != WaitingForBet {
			t.Errorf("Rejected bet changed phase to %s", s.Phase)
		}
	}
}

func TestStartRoundWithNoFunds(t *testing.T) {
	s := NewSession(Config{ID: "broke", Difficulty: Easy, Balance: 0, Seed: 42})

	err := s.StartRound(100)
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("Expected ErrGameOver, got %v", err)
	}
	if s.Phase != GameOver {
		t.Errorf("Expected phase GAME_OVER, got %s", s.Phase)
	}
}

func TestIllegalOperationsLeaveSessionUntouched(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		op    func(*Session) error
	}{
		{"hit while waiting for bet", WaitingForBet, (*Session).PlayerHit},
		{"stand while waiting for bet", WaitingForBet, (*Session).PlayerStand},
		{"ai turn during player turn", PlayerTurn, (*Session).PlayAITurn},
		{"dealer turn during player turn", PlayerTurn, (*Session).PlayDealerTurn},
		{"start during ai turn", AITurn, func(s *Session) error { return s.StartRound(100) }},
		{"hit after game over", GameOver, (*Session).PlayerHit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			s.Phase = tt.phase

			before, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			opErr := tt.op(s)
			if opErr == nil {
				t.Fatal("Expected a phase error")
			}
			var phaseErr *PhaseError
			if !errors.As(opErr, &phaseErr) {
				t.Fatalf("Expected *PhaseError, got %v", opErr)
			}
			if phaseErr.Phase != tt.phase {
				t.Errorf("Error reports phase %s, want %s", phaseErr.Phase, tt.phase)
			}

			after, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if !bytes.Equal(before, after) {
				t.Errorf("Illegal operation mutated the session:\nbefore %s\nafter  %s", before, after)
			}
		})
	}
}

func TestReshuffleBeforeLowDeckRound(t *testing.T) {
	s := newTestSession(t)

	// Burn the deck down below the reshuffle margin.
	for s.Deck.Remaining() >= reshuffleThreshold {
		if _, err := s.Deck.Deal(); err != nil {
			t.Fatalf("Deal failed: %v", err)
		}
	}

	if err := s.StartRound(100); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	// A fresh 52-card deck minus the six initial cards.
	if s.Deck.Remaining() != 46 {
		t.Errorf("Expected 46 cards after reshuffle and deal, got %d", s.Deck.Remaining())
	}

	// Deck plus hands must hold 52 unique cards.
	seen := make(map[Card]bool)
	count := 0
	for _, c := range s.Deck.Cards() {
		seen[c] = true
		count++
	}
	for _, hand := range [][]Card{s.Player.Hand, s.AI.Hand, s.Dealer.Hand} {
		for _, c := range hand {
			if seen[c] {
				t.Errorf("Duplicate card in play: %v", c)
			}
			seen[c] = true
			count++
		}
	}
	if count != 52 {
		t.Errorf("Expected 52 cards in play, got %d", count)
	}
}

func TestPlayerHitTransitions(t *testing.T) {
	tests := []struct {
		name      string
		hand      []Card
		nextCard  Card
		wantPhase Phase
	}{
		{"low score keeps the turn", handOf(NewCard(Hearts, Five), NewCard(Clubs, Two)), NewCard(Spades, Two), PlayerTurn},
		{"exactly 21 ends the turn", handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine)), NewCard(Spades, Two), AITurn},
		{"bust ends the turn", handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine)), NewCard(Spades, King), AITurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			s.Phase = PlayerTurn
			s.Player.Hand = tt.hand
			stackDeck(s, tt.nextCard)

			if err := s.PlayerHit(); err != nil {
				t.Fatalf("PlayerHit failed: %v", err)
			}
			if len(s.Player.Hand) != len(tt.hand)+1 {
				t.Errorf("Expected %d cards, got %d", len(tt.hand)+1, len(s.Player.Hand))
			}
			if s.Phase != tt.wantPhase {
				t.Errorf("Expected phase %s, got %s", tt.wantPhase, s.Phase)
			}
		})
	}
}

func TestPlayerStand(t *testing.T) {
	s := newTestSession(t)
	s.Phase = PlayerTurn

	if err := s.PlayerStand(); err != nil {
		t.Fatalf("PlayerStand failed: %v", err)
	}
	if s.Phase != AITurn {
		t.Errorf("Expected phase AI_TURN, got %s", s.Phase)
	}
}

func TestPlayAITurnSkipsWhenPlayerBusted(t *testing.T) {
	s := newTestSession(t)
	s.Phase = AITurn
	s.Player.Hand = handOf(NewCard(Hearts, King), NewCard(Clubs, Queen), NewCard(Spades, Five))
	s.AI.Hand = handOf(NewCard(Hearts, Two), NewCard(Clubs, Three))
	s.Dealer.Hand = handOf(NewCard(Diamonds, Nine), NewCard(Spades, Ten))

	if err := s.PlayAITurn(); err != nil {
		t.Fatalf("PlayAITurn failed: %v", err)
	}
	if len(s.AI.Hand) != 2 {
		t.Errorf("AI drew %d cards while the player was busted", len(s.AI.Hand)-2)
	}
	if s.Phase != DealerTurn {
		t.Errorf("Expected phase DEALER_TURN, got %s", s.Phase)
	}
}

func TestPlayAITurnDrawLoop(t *testing.T) {
	s := newTestSession(t)
	s.Phase = AITurn
	s.Player.Hand = handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine))
	// 12 against a dealer Ten: medium hits until 17 or better.
	s.AI.Hand = handOf(NewCard(Hearts, Seven), NewCard(Clubs, Five))
	s.Dealer.Hand = handOf(NewCard(Diamonds, Nine), NewCard(Spades, Ten))
	stackDeck(s, NewCard(Diamonds, Two), NewCard(Spades, Nine))

	if err := s.PlayAITurn(); err != nil {
		t.Fatalf("PlayAITurn failed: %v", err)
	}

	// Drew the Nine (21) and stopped.
	if got := s.AI.Score(); got != 21 {
		t.Errorf("Expected AI score 21, got %d", got)
	}
	if len(s.AI.Hand) != 3 {
		t.Errorf("Expected 3 AI cards, got %d", len(s.AI.Hand))
	}
	if s.Phase != DealerTurn {
		t.Errorf("Expected phase DEALER_TURN, got %s", s.Phase)
	}
}

func TestPlayAITurnStandsAgainstWeakUpCard(t *testing.T) {
	s := newTestSession(t)
	s.Phase = AITurn
	s.Player.Hand = handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine))
	// 12 against a dealer Six: medium stands immediately.
	s.AI.Hand = handOf(NewCard(Hearts, Seven), NewCard(Clubs, Five))
	s.Dealer.Hand = handOf(NewCard(Diamonds, Nine), NewCard(Spades, Six))

	if err := s.PlayAITurn(); err != nil {
		t.Fatalf("PlayAITurn failed: %v", err)
	}
	if len(s.AI.Hand) != 2 {
		t.Errorf("Expected the AI to stand pat, drew %d", len(s.AI.Hand)-2)
	}
	if s.Phase != DealerTurn {
		t.Errorf("Expected phase DEALER_TURN, got %s", s.Phase)
	}
}

func TestDealerTurnResolution(t *testing.T) {
	tests := []struct {
		name        string
		playerHand  []Card
		dealerHand  []Card
		deck        []Card
		wantBalance int64
		wantWinner  string
		wantPhase   Phase
	}{
		{
			name:        "higher score wins double",
			playerHand:  handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Eight)),
			wantBalance: 1100,
			wantWinner:  PlayerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "blackjack wins five to two",
			playerHand:  handOf(NewCard(Hearts, Ace), NewCard(Clubs, King)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Nine)),
			wantBalance: 1150,
			wantWinner:  PlayerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "push returns the bet",
			playerHand:  handOf(NewCard(Hearts, Ten), NewCard(Clubs, Queen)),
			dealerHand:  handOf(NewCard(Diamonds, King), NewCard(Spades, Jack)),
			wantBalance: 1000,
			wantWinner:  PushWinner,
			wantPhase:   RoundEnd,
		},
		{
			name:        "lower score loses the bet",
			playerHand:  handOf(NewCard(Hearts, Ten), NewCard(Clubs, Six)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Nine)),
			wantBalance: 900,
			wantWinner:  DealerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "player bust loses before anything else",
			playerHand:  handOf(NewCard(Hearts, King), NewCard(Clubs, Queen), NewCard(Spades, Five)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Eight)),
			wantBalance: 900,
			wantWinner:  DealerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "dealer bust pays double",
			playerHand:  handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Six)),
			deck:        []Card{NewCard(Hearts, King)},
			wantBalance: 1100,
			wantWinner:  PlayerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "dealer bust with blackjack pays five to two",
			playerHand:  handOf(NewCard(Hearts, Ace), NewCard(Clubs, King)),
			dealerHand:  handOf(NewCard(Diamonds, Ten), NewCard(Spades, Six)),
			deck:        []Card{NewCard(Hearts, King)},
			wantBalance: 1150,
			wantWinner:  PlayerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "dealer blackjack beats a plain twenty one",
			playerHand:  handOf(NewCard(Hearts, Five), NewCard(Clubs, Six), NewCard(Spades, Ten)),
			dealerHand:  handOf(NewCard(Diamonds, Ace), NewCard(Spades, King)),
			wantBalance: 900,
			wantWinner:  DealerName,
			wantPhase:   RoundEnd,
		},
		{
			name:        "player blackjack beats a dealer three card twenty one",
			playerHand:  handOf(NewCard(Hearts, Ace), NewCard(Clubs, King)),
			dealerHand:  handOf(NewCard(Diamonds, Five), NewCard(Spades, Six), NewCard(Clubs, Ten)),
			wantBalance: 1150,
			wantWinner:  PlayerName,
			wantPhase:   RoundEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			s.Phase = DealerTurn
			s.Player.Hand = tt.playerHand
			s.Player.Balance = 900
			s.Player.CurrentBet = 100
			s.Dealer.Hand = tt.dealerHand
			s.AI.Hand = handOf(NewCard(Clubs, Two), NewCard(Diamonds, Three))
			if tt.deck != nil {
				stackDeck(s, tt.deck...)
			}

			if err := s.PlayDealerTurn(); err != nil {
				t.Fatalf("PlayDealerTurn failed: %v", err)
			}
			if s.Player.Balance != tt.wantBalance {
				t.Errorf("Expected balance %d, got %d", tt.wantBalance, s.Player.Balance)
			}
			if s.LastRoundWinner != tt.wantWinner {
				t.Errorf("Expected winner %q, got %q", tt.wantWinner, s.LastRoundWinner)
			}
			if s.Phase != tt.wantPhase {
				t.Errorf("Expected phase %s, got %s", tt.wantPhase, s.Phase)
			}
			if s.Player.CurrentBet != 0 {
				t.Errorf("Bet not cleared after resolution: %d", s.Player.CurrentBet)
			}
		})
	}
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	s := newTestSession(t)
	s.Phase = DealerTurn
	s.Player.Hand = handOf(NewCard(Hearts, Ten), NewCard(Clubs, Nine))
	s.Player.Balance = 900
	s.Player.CurrentBet = 100
	s.Dealer.Hand = handOf(NewCard(Diamonds, Two), NewCard(Spades, Three))
	stackDeck(s, NewCard(Hearts, Seven), NewCard(Clubs, Five)) // deals Five then Seven

	if err := s.PlayDealerTurn(); err != nil {
		t.Fatalf("PlayDealerTurn failed: %v", err)
	}

	// 2+3 -> 10 -> 17: two draws, then stop.
	if got := s.Dealer.Score(); got != 17 {
		t.Errorf("Expected dealer score 17, got %d", got)
	}
	if len(s.Dealer.Hand) != 4 {
		t.Errorf("Expected 4 dealer cards, got %d", len(s.Dealer.Hand))
	}
}

func TestRoundLossToGameOver(t *testing.T) {
	s := newTestSession(t)
	s.Phase = DealerTurn
	s.Player.Hand = handOf(NewCard(Hearts, Ten), NewCard(Clubs, Six))
	s.Player.Balance = 0
	s.Player.CurrentBet = 100
	s.Dealer.Hand = handOf(NewCard(Diamonds, Ten), NewCard(Spades, Nine))

	if err := s.PlayDealerTurn(); err != nil {
		t.Fatalf("PlayDealerTurn failed: %v", err)
	}
	if s.Phase != GameOver {
		t.Errorf("Expected phase GAME_OVER, got %s", s.Phase)
	}
	if !s.IsGameOver() {
		t.Error("IsGameOver should report true")
	}
	if s.LastRoundWinner != DealerName {
		t.Errorf("Expected winner %q, got %q", DealerName, s.LastRoundWinner)
	}
}

func TestAIOutcomeNeverSettles(t *testing.T) {
	// The AI hand is presentation only: whether it holds a blackjack or a
	// bust, the player's settlement is identical.
	for _, aiHand := range [][]Card{
		handOf(NewCard(Hearts, Ace), NewCard(Clubs, King)),                       // blackjack
		handOf(NewCard(Hearts, King), NewCard(Clubs, Queen), NewCard(Spades, Five)), // bust
	} {
		s := newTestSession(t)
		s.Phase = DealerTurn
		s.Player.Hand = handOf(NewCard(Diamonds, Ten), NewCard(Spades, Nine))
		s.Player.Balance = 900
		s.Player.CurrentBet = 100
		s.Dealer.Hand = handOf(NewCard(Diamonds, King), NewCard(Hearts, Eight))
		s.AI.Hand = aiHand

		if err := s.PlayDealerTurn(); err != nil {
			t.Fatalf("PlayDealerTurn failed: %v", err)
		}
		if s.Player.Balance != 1100 {
			t.Errorf("AI hand affected settlement: balance %d", s.Player.Balance)
		}
		if s.LastRoundWinner != PlayerName {
			t.Errorf("AI hand affected the winner: %q", s.LastRoundWinner)
		}
	}
}

func TestSessionSerializationRoundTrip(t *testing.T) {
	s := newTestSession(t)
	if err := s.StartRound(250); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if s.CanHitStand() {
		if err := s.PlayerHit(); err != nil {
			t.Fatalf("PlayerHit failed: %v", err)
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	restored, err := UnmarshalSession(data)
	if err != nil {
		t.Fatalf("UnmarshalSession failed: %v", err)
	}

	if restored.ID != s.ID {
		t.Errorf("Expected ID %q, got %q", s.ID, restored.ID)
	}
	if restored.Phase != s.Phase {
		t.Errorf("Expected phase %s, got %s", s.Phase, restored.Phase)
	}
	if restored.Difficulty != s.Difficulty {
		t.Errorf("Expected difficulty %s, got %s", s.Difficulty, restored.Difficulty)
	}
	if restored.Player.Balance != s.Player.Balance || restored.Player.CurrentBet != s.Player.CurrentBet {
		t.Errorf("Player funds mismatch: %d/%d vs %d/%d",
			restored.Player.Balance, restored.Player.CurrentBet,
			s.Player.Balance, s.Player.CurrentBet)
	}
	if restored.Deck.Remaining() != s.Deck.Remaining() {
		t.Errorf("Expected %d cards, got %d", s.Deck.Remaining(), restored.Deck.Remaining())
	}

	// A second marshal of the restored session must be byte-identical.
	again, err := json.Marshal(restored)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("Round trip not stable:\nfirst  %s\nsecond %s", data, again)
	}
}

func TestUnmarshalSessionRejectsIncompleteState(t *testing.T) {
	if _, err := UnmarshalSession([]byte(`{"session_id":"x"}`)); err == nil {
		t.Error("Expected error for missing seats")
	}
	if _, err := UnmarshalSession([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed payload")
	}
}

func TestResetReplacesEverything(t *testing.T) {
	s := newTestSession(t)
	if err := s.StartRound(500); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	s.Phase = GameOver
	s.LastRoundWinner = DealerName

	s.Reset(1000)

	if s.Phase != WaitingForBet {
		t.Errorf("Expected phase WAITING_FOR_BET, got %s", s.Phase)
	}
	if s.Player.Balance != 1000 || s.Player.CurrentBet != 0 {
		t.Errorf("Expected balance 1000 and no bet, got %d and %d",
			s.Player.Balance, s.Player.CurrentBet)
	}
	if len(s.Player.Hand) != 0 || len(s.AI.Hand) != 0 || len(s.Dealer.Hand) != 0 {
		t.Error("Reset left cards in a hand")
	}
	if s.Deck.Remaining() != 52 {
		t.Errorf("Expected a fresh 52-card deck, got %d", s.Deck.Remaining())
	}
	if s.LastRoundWinner != NoWinner {
		t.Errorf("Expected winner %q, got %q", NoWinner, s.LastRoundWinner)
	}
	if s.AI.Difficulty != Medium {
		t.Errorf("Reset changed the difficulty to %s", s.AI.Difficulty)
	}
}

func TestSetDifficulty(t *testing.T) {
	s := newTestSession(t)
	s.SetDifficulty(Hard)
	if s.Difficulty != Hard || s.AI.Difficulty != Hard {
		t.Errorf("Expected HARD on session and seat, got %s and %s", s.Difficulty, s.AI.Difficulty)
	}
}

func TestPhaseNames(t *testing.T) {
	phases := []Phase{WaitingForBet, Dealing, PlayerTurn, AITurn, DealerTurn, RoundEnd, GameOver}
	for _, phase := range phases {
		parsed, err := ParsePhase(phase.String())
		if err != nil {
			t.Errorf("ParsePhase(%s) failed: %v", phase, err)
			continue
		}
		if parsed != phase {
			t.Errorf("ParsePhase(%s) = %v, want %v", phase, parsed, phase)
		}
	}

	if _, err := ParsePhase("SHOWDOWN"); err == nil {
		t.Error("Expected error for unknown phase")
	}
}

func TestProjectionFlags(t *testing.T) {
	s := newTestSession(t)

	if !s.CanBet() || s.CanHitStand() {
		t.Error("Fresh session should allow betting only")
	}
	if !s.HideDealerHole() {
		t.Error("Hole card should be hidden before the round ends")
	}

	s.Phase = PlayerTurn
	if s.CanBet() || !s.CanHitStand() {
		t.Error("Player turn should allow hit/stand only")
	}

	s.Phase = RoundEnd
	if !s.CanBet() || s.HideDealerHole() {
		t.Error("Round end should allow betting and reveal the hole card")
	}

	s.Phase = GameOver
	if s.HideDealerHole() {
		t.Error("Game over should reveal the hole card")
	}
}

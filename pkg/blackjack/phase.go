package blackjack

import (
	"fmt"
	"strings"
)

// Phase is the stage of a round's lifecycle. A session is in exactly one
// phase at any time.
type Phase int

const (
	WaitingForBet Phase = iota
	Dealing
	PlayerTurn
	AITurn
	DealerTurn
	RoundEnd
	GameOver
)

var phaseNames = map[Phase]string{
	WaitingForBet: "WAITING_FOR_BET",
	Dealing:       "DEALING",
	PlayerTurn:    "PLAYER_TURN",
	AITurn:        "AI_TURN",
	DealerTurn:    "DEALER_TURN",
	RoundEnd:      "ROUND_END",
	GameOver:      "GAME_OVER",
}

// String returns the phase name
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase converts a phase name to a Phase. Matching is
// case-insensitive.
func ParsePhase(s string) (Phase, error) {
	upper := strings.ToUpper(s)
	for phase, name := range phaseNames {
		if name == upper {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("invalid phase: %q", s)
}

// MarshalText implements encoding.TextMarshaler so phases serialize by
// name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Session operations, as named in errors and in the legality table.
const (
	opStartRound     = "start_round"
	opPlayerHit      = "hit"
	opPlayerStand    = "stand"
	opPlayAITurn     = "play_ai_turn"
	opPlayDealerTurn = "play_dealer_turn"
)

// legalPhases is the operation legality table. Every mutating session
// operation consults it on entry before touching any state. An operation
// missing from the table is legal in any phase.
var legalPhases = map[string][]Phase{
	opStartRound:     {WaitingForBet, RoundEnd},
	opPlayerHit:      {PlayerTurn},
	opPlayerStand:    {PlayerTurn},
	opPlayAITurn:     {AITurn},
	opPlayDealerTurn: {DealerTurn},
}

// checkPhase returns a *PhaseError when op is not legal in the current
// phase
func checkPhase(op string, current Phase) error {
	allowed, ok := legalPhases[op]
	if !ok {
		return nil
	}
	for _, p := range allowed {
		if p == current {
			return nil
		}
	}
	return &PhaseError{Op: op, Phase: current}
}

package blackjack

import (
	"fmt"
	"strings"
)

// Difficulty selects the AI opponent's strategy table
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

// String returns the difficulty name
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Medium:
		return "MEDIUM"
	case Hard:
		return "HARD"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty converts a difficulty name to a Difficulty. Matching is
// case-insensitive.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(s) {
	case "EASY":
		return Easy, nil
	case "MEDIUM":
		return Medium, nil
	case "HARD":
		return Hard, nil
	}
	return 0, fmt.Errorf("invalid difficulty: %q", s)
}

// MarshalText implements encoding.TextMarshaler so difficulties serialize
// by name
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Action is a turn decision
type Action string

const (
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// ParseAction converts a wire action string to an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "hit":
		return ActionHit, nil
	case "stand":
		return ActionStand, nil
	}
	return "", fmt.Errorf("invalid action: %q", s)
}

// Decide applies the difficulty's strategy table to an AI score and the
// dealer up-card value. The up-card value counts an Ace as 11.
func (d Difficulty) Decide(score, upValue int) Action {
	switch d {
	case Easy:
		if score < 17 {
			return ActionHit
		}
		return ActionStand

	case Medium:
		switch {
		case score < 12:
			return ActionHit
		case score >= 17:
			return ActionStand
		case upValue >= 7:
			// 12-16 against a strong up-card; an Ace's 11 counts as strong.
			return ActionHit
		default:
			return ActionStand
		}

	case Hard:
		switch {
		case score <= 11:
			return ActionHit
		case score == 12:
			if upValue >= 4 && upValue <= 6 {
				return ActionStand
			}
			return ActionHit
		case score <= 16:
			if upValue >= 2 && upValue <= 6 {
				return ActionStand
			}
			return ActionHit
		default:
			return ActionStand
		}
	}
	return ActionStand
}

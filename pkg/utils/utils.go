package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// SuitSymbol maps a card suit name to its one-rune table symbol. Unknown
// suits, including the server's "Hidden" placeholder, come back as "?".
func SuitSymbol(suit string) string {
	switch suit {
	case "Hearts":
		return "♥"
	case "Diamonds":
		return "♦"
	case "Clubs":
		return "♣"
	case "Spades":
		return "♠"
	}
	return "?"
}

// FormatCard renders one card for terminal display, e.g. "10♥" or "A♠".
// The dealer's face-down card renders as "??".
func FormatCard(rank, suit string) string {
	if rank == "Hidden" {
		return "??"
	}
	switch rank {
	case "Ace", "King", "Queen", "Jack":
		rank = rank[:1]
	}
	return rank + SuitSymbol(suit)
}

// EnsureDataDirExists creates the datadir and necessary subdirectories if
// they don't exist
func EnsureDataDirExists(datadir string) error {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return fmt.Errorf("failed to create datadir %s: %v", datadir, err)
	}

	// Create logs subdirectory
	logsDir := filepath.Join(datadir, "logs")
	if err := os.MkdirAll(logsDir, 0700); err != nil {
		return fmt.Errorf("failed to create logs directory %s: %v", logsDir, err)
	}

	return nil
}

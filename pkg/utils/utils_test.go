package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCard(t *testing.T) {
	assert.Equal(t, "10♥", FormatCard("10", "Hearts"))
	assert.Equal(t, "2♦", FormatCard("2", "Diamonds"))
	assert.Equal(t, "A♠", FormatCard("Ace", "Spades"))
	assert.Equal(t, "K♣", FormatCard("King", "Clubs"))
	assert.Equal(t, "Q♥", FormatCard("Queen", "Hearts"))
	assert.Equal(t, "J♦", FormatCard("Jack", "Diamonds"))
	assert.Equal(t, "??", FormatCard("Hidden", "Hidden"))
}

func TestEnsureDataDirExists(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "blackjackd")

	require.NoError(t, EnsureDataDirExists(datadir))

	info, err := os.Stat(datadir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Stat(filepath.Join(datadir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

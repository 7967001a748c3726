package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"blackjackd/pkg/client"
)

// errorMsg carries a local command failure into the update loop.
type errorMsg error

// CommandDispatcher dispatches player commands to the server through the
// websocket client.
type CommandDispatcher struct {
	cli *client.Client
}

// NewCommandDispatcher creates a new command dispatcher
func NewCommandDispatcher(cli *client.Client) *CommandDispatcher {
	return &CommandDispatcher{cli: cli}
}

func (cd *CommandDispatcher) startGameCmd(difficulty string, bet int64) tea.Cmd {
	return func() tea.Msg {
		if err := cd.cli.StartGame(difficulty, bet); err != nil {
			return errorMsg(fmt.Errorf("failed to start game: %v", err))
		}
		return nil
	}
}

func (cd *CommandDispatcher) hitCmd() tea.Cmd {
	return func() tea.Msg {
		if err := cd.cli.Hit(); err != nil {
			return errorMsg(fmt.Errorf("failed to hit: %v", err))
		}
		return nil
	}
}

func (cd *CommandDispatcher) standCmd() tea.Cmd {
	return func() tea.Msg {
		if err := cd.cli.Stand(); err != nil {
			return errorMsg(fmt.Errorf("failed to stand: %v", err))
		}
		return nil
	}
}

func (cd *CommandDispatcher) resetGameCmd() tea.Cmd {
	return func() tea.Msg {
		if err := cd.cli.ResetGame(); err != nil {
			return errorMsg(fmt.Errorf("failed to reset game: %v", err))
		}
		return nil
	}
}

// waitForUpdate blocks until the client delivers the next server event.
// The update loop re-arms it after every message.
func waitForUpdate(cli *client.Client) tea.Cmd {
	return func() tea.Msg {
		return <-cli.UpdatesCh
	}
}

// waitForError surfaces transport errors from the client.
func waitForError(cli *client.Client) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-cli.ErrorsCh
		if !ok {
			return nil
		}
		return errorMsg(err)
	}
}

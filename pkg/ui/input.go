package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// InputHandler handles input processing for different UI states
type InputHandler struct {
	ui *Model
}

// HandleKeyMsg processes keyboard input based on current state
func (ih *InputHandler) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch ih.ui.state {
	case stateConnecting:
		if msg.String() == "q" {
			return tea.Quit
		}
	case stateBetting:
		return ih.handleBetFormInput(msg)
	case stateActiveGame:
		return ih.handleTableInput(msg)
	case stateGameOver:
		return ih.handleGameOverInput(msg)
	}
	return nil
}

// handleBetFormInput processes input for the bet form
func (ih *InputHandler) handleBetFormInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui

	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if ui.selectedField > 0 {
			ui.selectedField--
		}
	case "down", "j":
		if ui.selectedField < 1 {
			ui.selectedField++
		}
	case "left", "h":
		if ui.selectedField == 1 {
			ui.difficulty = (ui.difficulty + len(difficulties) - 1) % len(difficulties)
		}
	case "right", "l":
		if ui.selectedField == 1 {
			ui.difficulty = (ui.difficulty + 1) % len(difficulties)
		}
	case "enter", " ":
		if amount := ui.betValue(); amount > 0 {
			return ui.dispatcher.startGameCmd(difficulties[ui.difficulty], amount)
		}
	case "backspace":
		if ui.selectedField == 0 && len(ui.betAmount) > 0 {
			ui.betAmount = ui.betAmount[:len(ui.betAmount)-1]
		}
	default:
		// Handle number input
		if ui.selectedField == 0 && len(msg.String()) == 1 &&
			msg.String()[0] >= '0' && msg.String()[0] <= '9' {
			ui.betAmount += msg.String()
		}
	}
	return nil
}

// handleTableInput processes input while a round is running
func (ih *InputHandler) handleTableInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui

	if msg.String() == "q" {
		return tea.Quit
	}
	if ui.game == nil {
		return nil
	}

	if ui.game.CanHitStand {
		switch msg.String() {
		case "h":
			return ui.dispatcher.hitCmd()
		case "s":
			return ui.dispatcher.standCmd()
		case "left", "up", "k":
			if ui.selectedAction > 0 {
				ui.selectedAction--
			}
		case "right", "down", "j":
			if ui.selectedAction < 1 {
				ui.selectedAction++
			}
		case "enter", " ":
			if ui.selectedAction == 0 {
				return ui.dispatcher.hitCmd()
			}
			return ui.dispatcher.standCmd()
		}
		return nil
	}

	if ui.game.Phase == phaseRoundEnd {
		switch msg.String() {
		case "enter", " ":
			// Deal again with the same stake and difficulty.
			if amount := ui.betValue(); amount > 0 {
				return ui.dispatcher.startGameCmd(difficulties[ui.difficulty], amount)
			}
			ui.state = stateBetting
		case "b":
			ui.state = stateBetting
		}
	}
	return nil
}

// handleGameOverInput processes input on the game over screen
func (ih *InputHandler) handleGameOverInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r", "enter", " ":
		return ih.ui.dispatcher.resetGameCmd()
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"blackjackd/pkg/client"
	"blackjackd/pkg/server"
)

// Server phase strings as they appear in game state updates.
const (
	phaseWaitingForBet = "waiting_for_bet"
	phaseDealing       = "dealing"
	phasePlayerTurn    = "player_turn"
	phaseAITurn        = "ai_turn"
	phaseDealerTurn    = "dealer_turn"
	phaseRoundEnd      = "round_end"
	phaseGameOver      = "game_over"
)

// difficulties lists the levels the server accepts, in form order.
var difficulties = []string{"easy", "medium", "hard"}

// screenState represents the current screen in the UI
type screenState int

const (
	stateConnecting screenState = iota
	stateBetting
	stateActiveGame
	stateGameOver
)

// Model contains all the state for our UI
type Model struct {
	cli   *client.Client
	state screenState

	// Latest table snapshot from the server; nil until the first update.
	game *server.GameStateUpdate

	// Temporary message
	message string
	err     error

	// Bet form inputs (just strings for simplicity)
	betAmount     string
	difficulty    int // index into difficulties
	selectedField int // 0 = bet amount, 1 = difficulty

	// Selected button in the hit/stand row
	selectedAction int

	dispatcher *CommandDispatcher
	renderer   *Renderer
	input      *InputHandler
}

// NewModel creates a new UI model bound to a connected client.
func NewModel(cli *client.Client) *Model {
	m := &Model{
		cli:        cli,
		state:      stateConnecting,
		betAmount:  "100",
		difficulty: 1, // medium
		dispatcher: NewCommandDispatcher(cli),
	}
	m.renderer = &Renderer{ui: m}
	m.input = &InputHandler{ui: m}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.cli), waitForError(m.cli))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.input.HandleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case client.AwaitingStartMsg:
		m.state = stateBetting
		m.message = msg.Message
		m.err = nil
		cmds = append(cmds, waitForUpdate(m.cli))

	case client.GameStateMsg:
		m.applyGameState((*server.GameStateUpdate)(msg))
		cmds = append(cmds, waitForUpdate(m.cli))

	case client.GameOverMsg:
		m.state = stateGameOver
		m.message = msg.Message
		cmds = append(cmds, waitForUpdate(m.cli))

	case client.ServerErrorMsg:
		m.err = errors.New(msg.Message)
		cmds = append(cmds, waitForUpdate(m.cli))

	case errorMsg:
		m.err = error(msg)
		cmds = append(cmds, waitForError(m.cli))
	}

	return m, tea.Batch(cmds...)
}

// applyGameState folds a fresh snapshot into the model and picks the screen
// that matches the server-side phase.
func (m *Model) applyGameState(state *server.GameStateUpdate) {
	m.game = state
	m.message = ""
	m.err = nil

	// Keep the bet form in step with the server so "deal again" reuses
	// the last round's stake and difficulty.
	if state.Player.CurrentBet > 0 {
		m.betAmount = strconv.FormatInt(state.Player.CurrentBet, 10)
	}
	for i, d := range difficulties {
		if strings.EqualFold(state.Difficulty, d) {
			m.difficulty = i
		}
	}

	switch {
	case state.IsGameOver:
		m.state = stateGameOver
	case state.Phase == phaseWaitingForBet:
		m.state = stateBetting
	default:
		if m.state != stateActiveGame {
			m.selectedAction = 0
		}
		m.state = stateActiveGame
	}
}

// betValue parses the bet form field. Zero means no usable amount yet.
func (m *Model) betValue() int64 {
	amount, err := strconv.ParseInt(m.betAmount, 10, 64)
	if err != nil || amount <= 0 {
		return 0
	}
	return amount
}

// View renders the current state of the UI
func (m *Model) View() string {
	var s string

	if m.message != "" {
		s += TitleStyle.Render(m.message) + "\n\n"
	}
	if m.err != nil {
		s += ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	switch m.state {
	case stateConnecting:
		s += TitleStyle.Render("Connecting to the table...") + "\n"
		s += HelpStyle.Render("Press 'q' to quit")
	case stateBetting:
		s += m.renderer.RenderBetForm()
	case stateActiveGame:
		s += m.renderer.RenderTable()
	case stateGameOver:
		s += m.renderer.RenderGameOver()
	}

	return s
}

// Run drives the UI until the player quits.
func Run(cli *client.Client) error {
	p := tea.NewProgram(NewModel(cli), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %v", err)
	}
	return nil
}

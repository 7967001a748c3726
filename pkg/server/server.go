package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"

	"blackjackd/pkg/blackjack"
	"blackjackd/pkg/logging"
)

// defaultAccount is the account every session settles against. The game is
// single player; all sessions share one bankroll row.
const defaultAccount = "Player"

// Validation errors surfaced to clients as error events.
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty level")
	ErrInvalidBet        = errors.New("bet amount must be a positive integer")
	ErrInvalidAction     = errors.New("invalid player action")
	ErrNoSession         = errors.New("no active game session")
	ErrNotPlayerTurn     = errors.New("it is not your turn to act")
)

// Publisher delivers server-initiated events to a connected client. The
// websocket gateway registers itself as the publisher so the turn scheduler
// can push state between client requests.
type Publisher interface {
	Publish(sessionID, event string, payload interface{})
}

// Config holds the server's dependencies and tuning knobs.
type Config struct {
	Store      SessionStore
	Accounts   Accounts
	LogBackend *logging.LogBackend

	// StartingBalance is the bankroll handed to new accounts and after a
	// reset. Defaults to 1000.
	StartingBalance int64

	// TurnDelay paces the AI and dealer turns so clients see them play
	// out. Defaults to 1s.
	TurnDelay time.Duration

	// QueueSize and Workers size the turn scheduler. Defaults: 64 and 2.
	QueueSize int
	Workers   int

	// Seed makes session decks deterministic when nonzero.
	Seed int64
}

// Server implements the game commands on top of the session store and the
// accounts database
type Server struct {
	log     slog.Logger
	gameLog slog.Logger

	store    SessionStore
	accounts Accounts

	startingBalance int64
	seed            int64

	publisher Publisher
	pubMu     sync.RWMutex

	scheduler *TurnScheduler
}

// NewServer creates a new blackjack server and starts its turn scheduler
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server config needs a session store")
	}
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("server config needs an accounts database")
	}

	log := slog.Disabled
	gameLog := slog.Disabled
	schedLog := slog.Disabled
	if cfg.LogBackend != nil {
		log = cfg.LogBackend.Logger("SRVR")
		gameLog = cfg.LogBackend.Logger("BLKJ")
		schedLog = cfg.LogBackend.Logger("SCHD")
	}

	startingBalance := cfg.StartingBalance
	if startingBalance <= 0 {
		startingBalance = 1000
	}
	turnDelay := cfg.TurnDelay
	if turnDelay <= 0 {
		turnDelay = time.Second
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}

	server := &Server{
		log:             log,
		gameLog:         gameLog,
		store:           cfg.Store,
		accounts:        cfg.Accounts,
		startingBalance: startingBalance,
		seed:            cfg.Seed,
	}

	server.scheduler = newTurnScheduler(server, schedLog, queueSize, workers, turnDelay)
	server.scheduler.Start()

	return server, nil
}

// Stop gracefully stops the server
func (s *Server) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// SetPublisher installs the event publisher. Events raised before a
// publisher is set are dropped.
func (s *Server) SetPublisher(p Publisher) {
	s.pubMu.Lock()
	s.publisher = p
	s.pubMu.Unlock()
}

func (s *Server) publish(sessionID, event string, payload interface{}) {
	s.pubMu.RLock()
	p := s.publisher
	s.pubMu.RUnlock()
	if p != nil {
		p.Publish(sessionID, event, payload)
	}
}

// loadSession fetches and deserializes the session along with its store
// version for the eventual conditional write-back.
func (s *Server) loadSession(ctx context.Context, id string) (*blackjack.Session, uint64, error) {
	data, version, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	sess, err := blackjack.UnmarshalSession(data)
	if err != nil {
		return nil, 0, fmt.Errorf("corrupt session %s: %v", id, err)
	}
	sess.SetLogger(s.gameLog)
	return sess, version, nil
}

// saveSession serializes the session and writes it back, conditional on the
// version the caller read.
func (s *Server) saveSession(ctx context.Context, sess *blackjack.Session, version uint64) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to serialize session %s: %v", sess.ID, err)
	}
	if _, err := s.store.Put(ctx, sess.ID, data, version); err != nil {
		return err
	}
	return nil
}

// maybeScheduleTurns hands the session to the turn scheduler when play has
// moved past the player's seat.
func (s *Server) maybeScheduleTurns(sess *blackjack.Session) {
	if sess.Phase == blackjack.AITurn || sess.Phase == blackjack.DealerTurn {
		s.scheduler.Schedule(sess.ID)
	}
}

// Connect returns the state of an existing session. Callers receiving
// ErrSessionNotFound should prompt the client to start a new game.
func (s *Server) Connect(ctx context.Context, sessionID string) (*GameStateUpdate, error) {
	sess, _, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Resuming existing game session for %s", sessionID)
	return collectGameState(sess), nil
}

// Disconnect persists the session's balance to the accounts database. The
// session itself stays in the store until its TTL runs out.
func (s *Server) Disconnect(ctx context.Context, sessionID string) {
	sess, _, err := s.loadSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.log.Warnf("Failed to load session %s on disconnect: %v", sessionID, err)
		}
		return
	}

	if err := s.accounts.SetBalance(defaultAccount, sess.Player.Balance, "disconnect"); err != nil {
		s.log.Errorf("Failed to persist balance for %s on disconnect: %v", sessionID, err)
		return
	}
	s.log.Infof("Client %s disconnected, final balance %d persisted", sessionID, sess.Player.Balance)
}

// StartGame starts a betting round, creating the session if needed. A
// session at GAME_OVER is replaced by a fresh one funded from the account,
// falling back to the starting balance when the account ran dry.
func (s *Server) StartGame(ctx context.Context, sessionID, difficulty string, bet int64) (*GameStateUpdate, error) {
	if difficulty == "" {
		difficulty = "MEDIUM"
	}
	diff, err := blackjack.ParseDifficulty(difficulty)
	if err != nil {
		return nil, ErrInvalidDifficulty
	}
	if bet <= 0 {
		return nil, ErrInvalidBet
	}

	sess, version, err := s.loadSession(ctx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		sess = nil
	default:
		return nil, err
	}

	balance, err := s.accounts.GetOrCreateBalance(defaultAccount, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %v", err)
	}

	if sess == nil || sess.Phase == blackjack.GameOver {
		if sess != nil && sess.Phase == blackjack.GameOver && balance <= 0 {
			// Broke accounts get a fresh bankroll when restarting
			// after a game over.
			balance = s.startingBalance
		}
		if sess == nil {
			version = 0
		}
		// A pre-existing version is kept so the write replaces the old
		// session instead of failing the create check.
		sess = blackjack.NewSession(blackjack.Config{
			ID:         sessionID,
			Difficulty: diff,
			Balance:    balance,
			Seed:       s.seed,
			Log:        s.gameLog,
		})
	} else if sess.CanBet() {
		// A difficulty change between rounds applies to the running
		// session.
		sess.SetDifficulty(diff)
	}

	if err := sess.StartRound(bet); err != nil {
		if errors.Is(err, blackjack.ErrRoundReset) {
			// The bet was refunded and the deck replaced; keep that.
			if serr := s.saveSession(ctx, sess, version); serr != nil {
				s.log.Errorf("Failed to save reset session %s: %v", sessionID, serr)
			}
		}
		return nil, err
	}

	if err := s.saveSession(ctx, sess, version); err != nil {
		return nil, err
	}
	if err := s.accounts.SetBalance(defaultAccount, sess.Player.Balance, "bet placed"); err != nil {
		s.log.Errorf("Failed to persist balance for %s: %v", sessionID, err)
	}
	s.log.Infof("Game round started for %s", sessionID)

	s.maybeScheduleTurns(sess)
	return collectGameState(sess), nil
}

// PlayerAction applies a hit or stand to the player's hand.
func (s *Server) PlayerAction(ctx context.Context, sessionID, action string) (*GameStateUpdate, error) {
	sess, version, err := s.loadSession(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if !sess.CanHitStand() {
		return nil, ErrNotPlayerTurn
	}

	act, err := blackjack.ParseAction(action)
	if err != nil {
		return nil, ErrInvalidAction
	}

	switch act {
	case blackjack.ActionHit:
		err = sess.PlayerHit()
	case blackjack.ActionStand:
		err = sess.PlayerStand()
	}
	if err != nil {
		return nil, err
	}

	if err := s.saveSession(ctx, sess, version); err != nil {
		return nil, err
	}

	s.maybeScheduleTurns(sess)
	return collectGameState(sess), nil
}

// ResetGame restores the account to the starting balance and resets the
// session, creating one when none exists.
func (s *Server) ResetGame(ctx context.Context, sessionID string) (*GameStateUpdate, error) {
	if err := s.accounts.SetBalance(defaultAccount, s.startingBalance, "game reset"); err != nil {
		return nil, fmt.Errorf("failed to reset account: %v", err)
	}

	sess, version, err := s.loadSession(ctx, sessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		sess = blackjack.NewSession(blackjack.Config{
			ID:         sessionID,
			Difficulty: blackjack.Medium,
			Balance:    s.startingBalance,
			Seed:       s.seed,
			Log:        s.gameLog,
		})
		version = 0
	case err != nil:
		return nil, err
	default:
		sess.Reset(s.startingBalance)
	}

	if err := s.saveSession(ctx, sess, version); err != nil {
		return nil, err
	}
	s.log.Infof("Game session %s reset", sessionID)
	return collectGameState(sess), nil
}

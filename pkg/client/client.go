package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/decred/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"blackjackd/pkg/server"
	"blackjackd/pkg/utils"
)

// Message types delivered on UpdatesCh for UI consumption.
type (
	// GameStateMsg carries a full table snapshot from the server.
	GameStateMsg *server.GameStateUpdate

	// AwaitingStartMsg means the server has no round in progress for this
	// session and is waiting for a start_game message.
	AwaitingStartMsg struct {
		SessionID string
		Message   string
	}

	// GameOverMsg means the player's bankroll hit zero.
	GameOverMsg struct {
		Message string
	}

	// ServerErrorMsg is an error envelope from the server, usually a
	// rejected command such as an oversized bet.
	ServerErrorMsg struct {
		Message string
	}
)

// Wire message types, matching the gateway protocol.
const (
	msgStartGame    = "start_game"
	msgPlayerAction = "player_action"
	msgResetGame    = "reset_game"

	msgAwaitingStart   = "awaiting_start"
	msgGameStateUpdate = "game_state_update"
	msgGameOver        = "game_over"
	msgError           = "error"
)

const (
	dialTimeout = 10 * time.Second
	sendTimeout = 10 * time.Second
	maxRedials  = 5
	redialPause = 500 * time.Millisecond
)

type clientEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type serverEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startGamePayload struct {
	Difficulty string `json:"difficulty"`
	BetAmount  int64  `json:"bet_amount"`
}

type playerActionPayload struct {
	Action string `json:"action"`
}

type awaitingStartPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// Client is a blackjack table client speaking the websocket protocol.
type Client struct {
	sync.RWMutex
	DataDir string

	sessionID string
	conn      *websocket.Conn

	cfg *Config
	log slog.Logger

	// UI communication channels
	UpdatesCh chan tea.Msg
	ErrorsCh  chan error

	// Websocket connections allow one concurrent writer.
	writeMu sync.Mutex

	// For reconnection handling
	ctx          context.Context
	cancelFunc   context.CancelFunc
	reconnecting bool
	reconnectMu  sync.Mutex
}

// NewClient dials the server and starts the background update stream. The
// session id is taken from cfg, falling back to the one persisted in the
// data directory; when neither exists the server assigns a fresh one.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg is nil")
	}
	cfg.applyDefaults()

	// Ensure datadir exists
	if err := utils.EnsureDataDirExists(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %v", err)
	}

	log := slog.Disabled
	if cfg.LogBackend != nil {
		log = cfg.LogBackend.Logger("BJCL")
	}

	ctx, cancel := context.WithCancel(ctx)

	c := &Client{
		DataDir:    cfg.DataDir,
		sessionID:  cfg.SessionID,
		cfg:        cfg,
		log:        log,
		UpdatesCh:  make(chan tea.Msg, 100),
		ErrorsCh:   make(chan error, 10),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	if c.sessionID == "" {
		c.sessionID = loadSessionID(cfg.DataDir)
	}

	conn, err := c.connect()
	if err != nil {
		cancel()
		return nil, err
	}
	go c.readLoop(conn)

	c.log.Debugf("Using session ID: %q", c.SessionID())
	return c, nil
}

// SessionID returns the session id currently bound to this client. It is
// empty until the server has assigned one.
func (c *Client) SessionID() string {
	c.RLock()
	defer c.RUnlock()
	return c.sessionID
}

// setSessionID records a server-assigned session id and persists it so the
// next run resumes the same table.
func (c *Client) setSessionID(id string) {
	c.Lock()
	changed := id != "" && id != c.sessionID
	if changed {
		c.sessionID = id
	}
	c.Unlock()

	if changed {
		persistSessionID(c.DataDir, id, c.log)
	}
}

// serverURL builds the websocket URL, including the session id query
// parameter when the client already has one.
func (c *Client) serverURL() (string, error) {
	addr := c.cfg.ServerAddr
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %v", c.cfg.ServerAddr, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	if id := c.SessionID(); id != "" {
		q := u.Query()
		q.Set("session_id", id)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// connect dials the server and installs the new connection.
func (c *Client) connect() (*websocket.Conn, error) {
	wsURL, err := c.serverURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(c.ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", wsURL, err)
	}

	c.Lock()
	c.conn = conn
	c.Unlock()

	c.log.Debugf("Connected to %s", wsURL)
	return conn, nil
}

// readLoop decodes server envelopes until the connection dies. A dropped
// transport triggers a reconnect; a deliberate close frame from the server
// does not, since that means a newer connection owns the session.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var env serverEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case <-c.ctx.Done():
				c.log.Info("update stream closed")
				return
			default:
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.pushError(fmt.Errorf("server closed the connection: %v", err))
				return
			}

			c.log.Warnf("update stream error: %v", err)
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				c.pushError(fmt.Errorf("failed to reconnect: %v", reconnectErr))
			}
			return // This goroutine ends; reconnect() starts a new one.
		}

		c.dispatch(env)
	}
}

// dispatch converts a server envelope into a typed update for the UI.
func (c *Client) dispatch(env serverEnvelope) {
	switch env.Type {
	case msgGameStateUpdate:
		var state server.GameStateUpdate
		if err := json.Unmarshal(env.Payload, &state); err != nil {
			c.log.Errorf("malformed %s payload: %v", env.Type, err)
			return
		}
		c.pushUpdate(GameStateMsg(&state))

	case msgAwaitingStart:
		var p awaitingStartPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.log.Errorf("malformed %s payload: %v", env.Type, err)
			return
		}
		c.setSessionID(p.SessionID)
		c.pushUpdate(AwaitingStartMsg{SessionID: p.SessionID, Message: p.Message})

	case msgGameOver:
		var p messagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.log.Errorf("malformed %s payload: %v", env.Type, err)
			return
		}
		c.pushUpdate(GameOverMsg{Message: p.Message})

	case msgError:
		var p messagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.log.Errorf("malformed %s payload: %v", env.Type, err)
			return
		}
		c.pushUpdate(ServerErrorMsg{Message: p.Message})

	default:
		c.log.Debugf("received unknown event type %q", env.Type)
	}
}

func (c *Client) pushUpdate(msg tea.Msg) {
	select {
	case c.UpdatesCh <- msg:
	default:
		c.log.Warn("Updates channel full, dropping update")
	}
}

func (c *Client) pushError(err error) {
	select {
	case c.ErrorsCh <- err:
	default:
		c.log.Warn("Errors channel full, dropping error")
	}
}

// reconnect attempts to re-establish the connection and restart the update
// stream.
func (c *Client) reconnect() error {
	c.reconnectMu.Lock()
	defer c.reconnectMu.Unlock()

	if c.reconnecting {
		return nil // Already reconnecting
	}
	c.reconnecting = true
	defer func() { c.reconnecting = false }()

	c.log.Info("attempting to reconnect...")

	c.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.Unlock()

	var err error
	for attempt := 1; attempt <= maxRedials; attempt++ {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case <-time.After(time.Duration(attempt) * redialPause):
		}

		var conn *websocket.Conn
		if conn, err = c.connect(); err == nil {
			go c.readLoop(conn)
			c.log.Info("successfully reconnected")
			return nil
		}
		c.log.Warnf("reconnect attempt %d failed: %v", attempt, err)
	}
	return err
}

// send marshals and writes one envelope to the server.
func (c *Client) send(msgType string, payload interface{}) error {
	c.RLock()
	conn := c.conn
	c.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected to server")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	if err := conn.WriteJSON(clientEnvelope{Type: msgType, Payload: payload}); err != nil {
		return fmt.Errorf("failed to send %s: %v", msgType, err)
	}
	return nil
}

// Close shuts the client down and releases the connection.
func (c *Client) Close() error {
	c.log.Debug("Closing client")

	if c.cancelFunc != nil {
		c.cancelFunc()
	}

	c.Lock()
	conn := c.conn
	c.conn = nil
	c.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
	return nil
}
